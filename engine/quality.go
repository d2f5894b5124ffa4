/*
quality.go - Data-quality scan, payment-method mix, and discount analysis

PURPOSE:
  Audits the canonical table for structural gaps (missing payment method,
  missing client, cancellation rate) and breaks revenue down by payment
  channel and discount usage.

COLUMN PRESENCE:
  The quality scan needs to distinguish "the source never supplies this
  column" (percentage is 0 by definition) from "the column exists but rows
  are blank" (those count as missing). The preprocessor preserves per-row
  blanks for exactly this reason.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// DataQuality summarizes structural gaps in the canonical table.
type DataQuality struct {
	TotalRecords      int     `json:"total_records"`
	MissingPaymentPct float64 `json:"missing_payment_pct"`
	MissingClientPct  float64 `json:"missing_client_pct"`
	AnuladasPct       float64 `json:"anuladas_pct"`
	WithDiscountsPct  float64 `json:"with_discounts_pct"`
}

// PaymentMixItem is the aggregate for one (year, month, payment type) cell.
type PaymentMixItem struct {
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// YearlyPaymentMix carries the percentage share of each payment type within
// one year's revenue.
type YearlyPaymentMix struct {
	Year   int                `json:"year"`
	Shares map[string]float64 `json:"shares"`
}

// DiscountClient is one client in the top discounted list.
type DiscountClient struct {
	Cliente   string  `json:"cliente"`
	Descuento float64 `json:"descuento"`
	TxCount   int     `json:"tx_count"`
}

// DiscountsAnalysis compares tickets with and without discounts.
type DiscountsAnalysis struct {
	AvgTicketWithDiscount float64          `json:"avg_ticket_with_discount"`
	AvgTicketNoDiscount   float64          `json:"avg_ticket_no_discount"`
	TopDiscountedClients  []DiscountClient `json:"top_10_discounted_clients"`
}

// =============================================================================
// DATA QUALITY
// =============================================================================

// ScanQuality audits the canonical table. Every percentage is 0 when the
// table is empty; missing-value percentages are 0 when the source never
// supplies the column at all.
func ScanQuality(canonical []Transaction, cols ColumnSet) DataQuality {
	quality := DataQuality{TotalRecords: len(canonical)}
	if len(canonical) == 0 {
		return quality
	}

	var missingPayment, missingClient, anuladas, discounted int
	for _, t := range canonical {
		if cols.FormaPago && t.FormaPagoRaw == "" {
			missingPayment++
		}
		if cols.Cliente && t.Cliente == "" {
			missingClient++
		}
		if t.IsCancelled() {
			anuladas++
		}
		if t.HasDiscount {
			discounted++
		}
	}

	total := float64(len(canonical))
	quality.MissingPaymentPct = float64(missingPayment) / total * 100
	quality.MissingClientPct = float64(missingClient) / total * 100
	quality.AnuladasPct = float64(anuladas) / total * 100
	quality.WithDiscountsPct = float64(discounted) / total * 100
	return quality
}

// =============================================================================
// PAYMENT MIX
// =============================================================================

// PaymentMix aggregates filtered rows per (year, month, payment type).
func PaymentMix(filtered []Transaction) []PaymentMixItem {
	type mixKey struct {
		year  int
		month int
		ptype string
	}
	type mixAccum struct {
		amount decimal.Decimal
		count  int
	}
	cells := make(map[mixKey]*mixAccum)
	for _, t := range filtered {
		key := mixKey{year: t.Year, month: t.Month, ptype: t.PaymentType}
		acc, ok := cells[key]
		if !ok {
			acc = &mixAccum{}
			cells[key] = acc
		}
		acc.amount = acc.amount.Add(t.Facturado)
		acc.count++
	}

	items := make([]PaymentMixItem, 0, len(cells))
	for key, acc := range cells {
		items = append(items, PaymentMixItem{
			Year:   key.year,
			Month:  key.month,
			Type:   key.ptype,
			Amount: acc.amount.InexactFloat64(),
			Count:  acc.count,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Year != items[j].Year {
			return items[i].Year < items[j].Year
		}
		if items[i].Month != items[j].Month {
			return items[i].Month < items[j].Month
		}
		return items[i].Type < items[j].Type
	})
	return items
}

// PaymentMixByYear computes each payment type's percentage share of a year's
// revenue over non-cancelled rows. Years with zero revenue are skipped.
func PaymentMixByYear(filtered []Transaction) []YearlyPaymentMix {
	totals := make(map[int]decimal.Decimal)
	byType := make(map[int]map[string]decimal.Decimal)
	for _, t := range filtered {
		if t.IsCancelled() {
			continue
		}
		totals[t.Year] = totals[t.Year].Add(t.Facturado)
		if byType[t.Year] == nil {
			byType[t.Year] = make(map[string]decimal.Decimal)
		}
		byType[t.Year][t.PaymentType] = byType[t.Year][t.PaymentType].Add(t.Facturado)
	}

	years := make([]int, 0, len(totals))
	for year := range totals {
		years = append(years, year)
	}
	sort.Ints(years)

	mix := make([]YearlyPaymentMix, 0, len(years))
	for _, year := range years {
		total := totals[year]
		if !total.IsPositive() {
			continue
		}
		shares := make(map[string]float64, len(byType[year]))
		for ptype, amount := range byType[year] {
			shares[ptype] = amount.Div(total).InexactFloat64() * 100
		}
		mix = append(mix, YearlyPaymentMix{Year: year, Shares: shares})
	}
	return mix
}

// =============================================================================
// DISCOUNTS
// =============================================================================

// AnalyzeDiscounts compares average tickets with and without discounts over
// non-cancelled rows and ranks the most discounted clients.
func AnalyzeDiscounts(filtered []Transaction, topN int) DiscountsAnalysis {
	var withSum, withoutSum decimal.Decimal
	var withCount, withoutCount int
	type discountAccum struct {
		descuento decimal.Decimal
		txCount   int
	}
	clients := make(map[string]*discountAccum)

	for _, t := range filtered {
		if t.IsCancelled() {
			continue
		}
		if t.HasDiscount {
			withSum = withSum.Add(t.Facturado)
			withCount++
			acc, ok := clients[t.Cliente]
			if !ok {
				acc = &discountAccum{}
				clients[t.Cliente] = acc
			}
			acc.descuento = acc.descuento.Add(t.Descuento)
			acc.txCount++
		} else {
			withoutSum = withoutSum.Add(t.Facturado)
			withoutCount++
		}
	}

	analysis := DiscountsAnalysis{TopDiscountedClients: []DiscountClient{}}
	if withCount > 0 {
		analysis.AvgTicketWithDiscount = withSum.InexactFloat64() / float64(withCount)
	}
	if withoutCount > 0 {
		analysis.AvgTicketNoDiscount = withoutSum.InexactFloat64() / float64(withoutCount)
	}

	ranked := make([]DiscountClient, 0, len(clients))
	for name, acc := range clients {
		ranked = append(ranked, DiscountClient{
			Cliente:   name,
			Descuento: acc.descuento.InexactFloat64(),
			TxCount:   acc.txCount,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Descuento != ranked[j].Descuento {
			return ranked[i].Descuento > ranked[j].Descuento
		}
		return ranked[i].Cliente < ranked[j].Cliente
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	analysis.TopDiscountedClients = ranked
	return analysis
}
