/*
drilldown.go - Row-level projections: drilldown, pending invoices, search

PURPOSE:
  Produces bounded row-level listings from filtered/canonical tables. Dates
  are rendered as fixed-format strings here, at the projection boundary, so
  payloads never carry raw timestamps.

BOUNDS:
  Drilldown is capped at 5000 most-recent rows, pending invoices at 2000
  oldest-first rows. Client history search is unbounded but requires a
  non-empty query (an empty query returns nothing, not everything).

TIME SEMANTICS:
  days_overdue on pending invoices is computed against the clock at call
  time. Two calls can disagree; that is intentional "as of now" semantics.
*/
package engine

import (
	"sort"
	"strings"
	"time"
)

const (
	drilldownLimit = 5000
	pendingLimit   = 2000

	rowTimeFormat = "2006-01-02 15:04"
	rowDateFormat = "2006-01-02"
)

// DrilldownRow is one fully-rendered transaction row.
type DrilldownRow struct {
	FechaEmision string  `json:"fecha_emision"`
	Comprobante  string  `json:"comprobante"`
	Cliente      string  `json:"cliente"`
	Facturado    float64 `json:"facturado"`
	Pagado       float64 `json:"pagado"`
	Pendiente    float64 `json:"pendiente"`
	Descuento    float64 `json:"descuento"`
	Estado       string  `json:"estado"`
	PaymentType  string  `json:"payment_type"`
}

// PendingInvoice is one open invoice row with its age in days.
type PendingInvoice struct {
	FechaEmision string  `json:"fecha_emision"`
	Comprobante  string  `json:"comprobante"`
	Cliente      string  `json:"cliente"`
	Facturado    float64 `json:"facturado"`
	Pendiente    float64 `json:"pendiente"`
	DaysOverdue  int     `json:"days_overdue"`
}

func toDrilldownRow(t Transaction) DrilldownRow {
	return DrilldownRow{
		FechaEmision: t.FechaEmision.Format(rowTimeFormat),
		Comprobante:  t.Comprobante,
		Cliente:      t.Cliente,
		Facturado:    t.Facturado.InexactFloat64(),
		Pagado:       t.Pagado.InexactFloat64(),
		Pendiente:    t.Pendiente.InexactFloat64(),
		Descuento:    t.Descuento.InexactFloat64(),
		Estado:       t.Estado,
		PaymentType:  t.PaymentType,
	}
}

// sortByEmission sorts a copy of the table by emission timestamp.
func sortByEmission(table []Transaction, descending bool) []Transaction {
	sorted := make([]Transaction, len(table))
	copy(sorted, table)
	sort.SliceStable(sorted, func(i, j int) bool {
		if descending {
			return sorted[i].FechaEmision.After(sorted[j].FechaEmision)
		}
		return sorted[i].FechaEmision.Before(sorted[j].FechaEmision)
	})
	return sorted
}

// Drilldown renders the most recent rows of the filtered view, newest first,
// capped at 5000.
func Drilldown(filtered []Transaction) []DrilldownRow {
	sorted := sortByEmission(filtered, true)
	if len(sorted) > drilldownLimit {
		sorted = sorted[:drilldownLimit]
	}
	rows := make([]DrilldownRow, len(sorted))
	for i, t := range sorted {
		rows[i] = toDrilldownRow(t)
	}
	return rows
}

// PendingInvoices renders the open invoices of the filtered view, oldest
// first, capped at 2000. days_overdue is measured against now.
func PendingInvoices(filtered []Transaction, now time.Time) []PendingInvoice {
	open := make([]Transaction, 0, len(filtered))
	for _, t := range filtered {
		if t.IsCancelled() || !t.Pendiente.IsPositive() {
			continue
		}
		open = append(open, t)
	}
	sorted := sortByEmission(open, false)
	if len(sorted) > pendingLimit {
		sorted = sorted[:pendingLimit]
	}

	rows := make([]PendingInvoice, len(sorted))
	for i, t := range sorted {
		days := int(now.Sub(t.FechaEmision).Hours() / 24)
		if days < 0 {
			days = 0
		}
		rows[i] = PendingInvoice{
			FechaEmision: t.FechaEmision.Format(rowDateFormat),
			Comprobante:  t.Comprobante,
			Cliente:      t.Cliente,
			Facturado:    t.Facturado.InexactFloat64(),
			Pendiente:    t.Pendiente.InexactFloat64(),
			DaysOverdue:  days,
		}
	}
	return rows
}

// SearchClientHistory returns every canonical row whose client name contains
// the query (case-insensitive), newest first. An empty query matches nothing.
func SearchClientHistory(canonical []Transaction, query string) []DrilldownRow {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []DrilldownRow{}
	}

	matches := make([]Transaction, 0)
	for _, t := range canonical {
		if strings.Contains(strings.ToLower(t.Cliente), q) {
			matches = append(matches, t)
		}
	}
	sorted := sortByEmission(matches, true)
	rows := make([]DrilldownRow, len(sorted))
	for i, t := range sorted {
		rows[i] = toDrilldownRow(t)
	}
	return rows
}

// CancelledAudit renders the cancelled rows of the filtered view, newest
// first, capped at limit.
func CancelledAudit(filtered []Transaction, limit int) []DrilldownRow {
	cancelled := make([]Transaction, 0)
	for _, t := range filtered {
		if t.IsCancelled() {
			cancelled = append(cancelled, t)
		}
	}
	sorted := sortByEmission(cancelled, true)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	rows := make([]DrilldownRow, len(sorted))
	for i, t := range sorted {
		rows[i] = toDrilldownRow(t)
	}
	return rows
}
