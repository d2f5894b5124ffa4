/*
customers.go - Customer concentration, retention, debtors, and aging

PURPOSE:
  Groups the filtered non-cancelled view by client to measure concentration
  (Pareto top-20 share), retention (clients with repeat business), the
  largest outstanding debtors, and the aging profile of receivables.

AGING REFERENCE DATE:
  Days-since is measured against the maximum emission timestamp of the
  UNFILTERED canonical table - a single global as-of date. Buckets are
  mutually exclusive and upper-inclusive: [0,7], (7,30], (30,60], (60,inf).
  Empty input yields an empty bucket list, not zero-filled buckets.
*/
package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// ClientStat is one client in the top-20 concentration list.
type ClientStat struct {
	Cliente   string  `json:"cliente"`
	Facturado float64 `json:"facturado"`
	TxCount   int     `json:"tx_count"`
}

// CustomerInsights summarizes concentration and retention over a view.
type CustomerInsights struct {
	TotalClients  int          `json:"total_clients"`
	RetentionRate float64      `json:"retention_rate"`
	ParetoShare   float64      `json:"pareto_share"`
	Top20Clients  []ClientStat `json:"top_20_clients"`
}

// Debtor is one client with outstanding balance.
type Debtor struct {
	Cliente   string  `json:"cliente"`
	Pendiente float64 `json:"pendiente"`
}

// AgingBucket is one range of the receivables aging report.
type AgingBucket struct {
	Range  string  `json:"range"`
	Amount float64 `json:"amount"`
}

// =============================================================================
// CONCENTRATION & RETENTION
// =============================================================================

// AnalyzeCustomers computes concentration and retention over non-cancelled
// filtered rows. All ratios degrade to 0 on empty or zero-revenue input.
func AnalyzeCustomers(filtered []Transaction) CustomerInsights {
	type clientAccum struct {
		facturado decimal.Decimal
		txCount   int
	}
	clients := make(map[string]*clientAccum)
	var totalRevenue decimal.Decimal
	for _, t := range filtered {
		if t.IsCancelled() {
			continue
		}
		acc, ok := clients[t.Cliente]
		if !ok {
			acc = &clientAccum{}
			clients[t.Cliente] = acc
		}
		acc.facturado = acc.facturado.Add(t.Facturado)
		acc.txCount++
		totalRevenue = totalRevenue.Add(t.Facturado)
	}

	insights := CustomerInsights{Top20Clients: []ClientStat{}}
	if len(clients) == 0 {
		return insights
	}

	stats := make([]ClientStat, 0, len(clients))
	returning := 0
	for name, acc := range clients {
		if acc.txCount > 1 {
			returning++
		}
		stats = append(stats, ClientStat{
			Cliente:   name,
			Facturado: acc.facturado.InexactFloat64(),
			TxCount:   acc.txCount,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Facturado != stats[j].Facturado {
			return stats[i].Facturado > stats[j].Facturado
		}
		return stats[i].Cliente < stats[j].Cliente
	})

	top := stats
	if len(top) > 20 {
		top = top[:20]
	}

	insights.TotalClients = len(clients)
	insights.RetentionRate = float64(returning) / float64(len(clients)) * 100
	insights.Top20Clients = top

	if totalRevenue.IsPositive() {
		var topRevenue decimal.Decimal
		for _, s := range top {
			topRevenue = topRevenue.Add(decimal.NewFromFloat(s.Facturado))
		}
		insights.ParetoShare = topRevenue.Div(totalRevenue).InexactFloat64() * 100
	}
	return insights
}

// TopDebtors returns the clients with the largest outstanding sums among
// non-cancelled rows with pendiente > 0, capped at limit.
func TopDebtors(filtered []Transaction, limit int) []Debtor {
	pending := make(map[string]decimal.Decimal)
	for _, t := range filtered {
		if t.IsCancelled() || !t.Pendiente.IsPositive() {
			continue
		}
		pending[t.Cliente] = pending[t.Cliente].Add(t.Pendiente)
	}

	debtors := make([]Debtor, 0, len(pending))
	for name, amount := range pending {
		debtors = append(debtors, Debtor{Cliente: name, Pendiente: amount.InexactFloat64()})
	}
	sort.Slice(debtors, func(i, j int) bool {
		if debtors[i].Pendiente != debtors[j].Pendiente {
			return debtors[i].Pendiente > debtors[j].Pendiente
		}
		return debtors[i].Cliente < debtors[j].Cliente
	})
	if limit > 0 && len(debtors) > limit {
		debtors = debtors[:limit]
	}
	return debtors
}

// =============================================================================
// AGING OF RECEIVABLES
// =============================================================================

// ReferenceDate returns the maximum emission timestamp of the canonical
// table, the global as-of date for aging.
func ReferenceDate(canonical []Transaction) time.Time {
	var latest time.Time
	for _, t := range canonical {
		if t.FechaEmision.After(latest) {
			latest = t.FechaEmision
		}
	}
	return latest
}

// Aging buckets the outstanding amounts of non-cancelled filtered rows by
// whole days elapsed since emission, measured against refDate.
func Aging(filtered []Transaction, refDate time.Time) []AgingBucket {
	var b0to7, b8to30, b31to60, b60plus decimal.Decimal
	any := false
	for _, t := range filtered {
		if t.IsCancelled() || !t.Pendiente.IsPositive() {
			continue
		}
		any = true
		days := int(refDate.Sub(t.FechaEmision).Hours() / 24)
		switch {
		case days <= 7:
			b0to7 = b0to7.Add(t.Pendiente)
		case days <= 30:
			b8to30 = b8to30.Add(t.Pendiente)
		case days <= 60:
			b31to60 = b31to60.Add(t.Pendiente)
		default:
			b60plus = b60plus.Add(t.Pendiente)
		}
	}
	if !any {
		return []AgingBucket{}
	}
	return []AgingBucket{
		{Range: "0-7 días", Amount: b0to7.InexactFloat64()},
		{Range: "8-30 días", Amount: b8to30.InexactFloat64()},
		{Range: "31-60 días", Amount: b31to60.InexactFloat64()},
		{Range: "60+ días", Amount: b60plus.InexactFloat64()},
	}
}
