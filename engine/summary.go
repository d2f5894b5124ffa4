/*
summary.go - Headline KPI computation over the filtered view

PURPOSE:
  Computes the summary card of the dashboard: totals of the four monetary
  columns, transaction count, average ticket, cancellation stats, and the
  effective discount rate.

ZERO-DENOMINATOR POLICY:
  Every ratio degrades to 0 on an empty or zero-denominator input. The
  summary never produces NaN and never raises.
*/
package engine

import "github.com/shopspring/decimal"

// SummaryKPIs is the headline block of the summary endpoint.
type SummaryKPIs struct {
	Facturado       float64 `json:"facturado"`
	Pagado          float64 `json:"pagado"`
	Pendiente       float64 `json:"pendiente"`
	Descuento       float64 `json:"descuento"`
	TxCount         int     `json:"tx_count"`
	AvgTicket       float64 `json:"avg_ticket"`
	AnuladasCount   int     `json:"anuladas_count"`
	AnuladasPct     float64 `json:"anuladas_pct"`
	DiscountPercent float64 `json:"discount_percent"`
}

// Summarize computes the headline KPIs over a filtered view. Monetary sums
// and the average ticket cover non-cancelled rows only; the cancellation and
// discount percentages cover the whole view.
func Summarize(filtered []Transaction) SummaryKPIs {
	var facturado, pagado, pendiente, descuento decimal.Decimal
	var allFacturado, allDescuento decimal.Decimal
	var txCount, anuladas int

	for _, t := range filtered {
		allFacturado = allFacturado.Add(t.Facturado)
		allDescuento = allDescuento.Add(t.Descuento)
		if t.IsCancelled() {
			anuladas++
			continue
		}
		facturado = facturado.Add(t.Facturado)
		pagado = pagado.Add(t.Pagado)
		pendiente = pendiente.Add(t.Pendiente)
		descuento = descuento.Add(t.Descuento)
		txCount++
	}

	kpis := SummaryKPIs{
		Facturado:     facturado.InexactFloat64(),
		Pagado:        pagado.InexactFloat64(),
		Pendiente:     pendiente.InexactFloat64(),
		Descuento:     descuento.InexactFloat64(),
		TxCount:       txCount,
		AnuladasCount: anuladas,
	}

	if txCount > 0 {
		kpis.AvgTicket = kpis.Facturado / float64(txCount)
	}
	if n := len(filtered); n > 0 {
		kpis.AnuladasPct = float64(anuladas) / float64(n) * 100
	}
	gross := allFacturado.Add(allDescuento)
	if gross.IsPositive() {
		kpis.DiscountPercent = allDescuento.Div(gross).InexactFloat64() * 100
	}

	return kpis
}
