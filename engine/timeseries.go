/*
timeseries.go - Time-series and seasonality aggregation

PURPOSE:
  Computes the trend views of the dashboard: yearly and monthly KPIs broken
  down by status and document type, daily totals for rolling averages, the
  day-of-week profile, the (day, hour) demand heatmap, and the year-to-date
  comparison against the previous year.

FILTER POLICY:
  Yearly/monthly/daily series run over the canonical table narrowed only by
  the year/month window: an active status/tipo/search filter highlights a
  sub-segment elsewhere but must not suppress historical bars. Day-of-week
  and heatmap aggregates run over the non-cancelled currently-filtered rows.

AVERAGE DAILY SALES:
  The per-weekday average divides by the number of distinct calendar dates
  observed for that weekday, not by transaction count. It measures daily
  footfall intensity, not per-transaction value.
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

// KpiItem is one grouped KPI row of the yearly or monthly series.
type KpiItem struct {
	Year        int     `json:"year"`
	Month       int     `json:"month,omitempty"`
	Estado      string  `json:"estado"`
	Tipo        string  `json:"tipo"`
	Facturado   float64 `json:"facturado"`
	Pagado      float64 `json:"pagado"`
	Pendiente   float64 `json:"pendiente"`
	Descuento   float64 `json:"descuento"`
	TxCount     int     `json:"tx_count"`
	TicketProm  float64 `json:"ticket_prom"`
	DescRatePct float64 `json:"desc_rate_percentage"`
}

// DailyPoint is one calendar date of the daily trend series.
type DailyPoint struct {
	Date      string  `json:"date"`
	Facturado float64 `json:"facturado"`
	TxCount   int     `json:"tx_count"`
}

// DowStat is the aggregate for one weekday.
type DowStat struct {
	Day           string  `json:"day"`
	Facturado     float64 `json:"facturado"`
	TxCount       int     `json:"tx_count"`
	AvgDailySales float64 `json:"avg_daily_sales"`
}

// HeatmapCell is one (weekday, hour) cell of the demand heatmap.
type HeatmapCell struct {
	Day       string  `json:"day"`
	Hour      int     `json:"hour"`
	Facturado float64 `json:"facturado"`
	TxCount   int     `json:"tx_count"`
}

// YTDComparison compares the latest year against the previous one up to the
// same day of year.
type YTDComparison struct {
	LimitDate         string  `json:"limit_date"`
	LatestYear        int     `json:"latest_year"`
	PreviousYear      int     `json:"previous_year"`
	FacturadoLatest   float64 `json:"facturado_latest"`
	FacturadoPrevious float64 `json:"facturado_previous"`
	GrowthRatePct     float64 `json:"growth_rate_percentage"`
	TxLatest          int     `json:"tx_latest"`
	TxPrevious        int     `json:"tx_previous"`
}

// =============================================================================
// GROUPED KPI SERIES
// =============================================================================

type kpiKey struct {
	year   int
	month  int
	estado string
	tipo   string
}

type kpiAccum struct {
	facturado decimal.Decimal
	pagado    decimal.Decimal
	pendiente decimal.Decimal
	descuento decimal.Decimal
	txCount   int
}

// YearlyKPIs groups the window by (year, estado, tipo) and aggregates the
// four monetary columns plus derived ratios.
func YearlyKPIs(window []Transaction) []KpiItem {
	return groupedKPIs(window, false)
}

// MonthlySeasonality groups the window by (year, month, estado, tipo).
func MonthlySeasonality(window []Transaction) []KpiItem {
	return groupedKPIs(window, true)
}

func groupedKPIs(window []Transaction, byMonth bool) []KpiItem {
	groups := make(map[kpiKey]*kpiAccum)
	for _, t := range window {
		key := kpiKey{year: t.Year, estado: t.Estado, tipo: t.Tipo}
		if byMonth {
			key.month = t.Month
		}
		acc, ok := groups[key]
		if !ok {
			acc = &kpiAccum{}
			groups[key] = acc
		}
		acc.facturado = acc.facturado.Add(t.Facturado)
		acc.pagado = acc.pagado.Add(t.Pagado)
		acc.pendiente = acc.pendiente.Add(t.Pendiente)
		acc.descuento = acc.descuento.Add(t.Descuento)
		acc.txCount++
	}

	items := make([]KpiItem, 0, len(groups))
	for key, acc := range groups {
		item := KpiItem{
			Year:      key.year,
			Month:     key.month,
			Estado:    key.estado,
			Tipo:      key.tipo,
			Facturado: acc.facturado.InexactFloat64(),
			Pagado:    acc.pagado.InexactFloat64(),
			Pendiente: acc.pendiente.InexactFloat64(),
			Descuento: acc.descuento.InexactFloat64(),
			TxCount:   acc.txCount,
		}
		if acc.txCount > 0 {
			item.TicketProm = item.Facturado / float64(acc.txCount)
		}
		gross := acc.facturado.Add(acc.descuento)
		if gross.IsPositive() {
			item.DescRatePct = acc.descuento.Div(gross).InexactFloat64() * 100
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Year != items[j].Year {
			return items[i].Year < items[j].Year
		}
		if items[i].Month != items[j].Month {
			return items[i].Month < items[j].Month
		}
		if items[i].Estado != items[j].Estado {
			return items[i].Estado < items[j].Estado
		}
		return items[i].Tipo < items[j].Tipo
	})
	return items
}

// =============================================================================
// DAILY TRENDS
// =============================================================================

// DailyTrends sums facturado and counts transactions per calendar date over
// non-cancelled rows, sorted chronologically.
func DailyTrends(window []Transaction) []DailyPoint {
	type dayAccum struct {
		facturado decimal.Decimal
		txCount   int
	}
	days := make(map[string]*dayAccum)
	for _, t := range window {
		if t.IsCancelled() {
			continue
		}
		key := t.FechaEmision.Format("2006-01-02")
		acc, ok := days[key]
		if !ok {
			acc = &dayAccum{}
			days[key] = acc
		}
		acc.facturado = acc.facturado.Add(t.Facturado)
		acc.txCount++
	}

	points := make([]DailyPoint, 0, len(days))
	for date, acc := range days {
		points = append(points, DailyPoint{
			Date:      date,
			Facturado: acc.facturado.InexactFloat64(),
			TxCount:   acc.txCount,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// =============================================================================
// DAY OF WEEK & HEATMAP
// =============================================================================

// DowAnalysis aggregates non-cancelled filtered rows per weekday. The daily
// average divides by distinct active calendar dates for that weekday.
func DowAnalysis(filtered []Transaction) []DowStat {
	type dowAccum struct {
		facturado decimal.Decimal
		txCount   int
		dates     map[string]struct{}
	}
	byDow := make(map[int]*dowAccum)
	for _, t := range filtered {
		if t.IsCancelled() {
			continue
		}
		acc, ok := byDow[t.DowIdx]
		if !ok {
			acc = &dowAccum{dates: make(map[string]struct{})}
			byDow[t.DowIdx] = acc
		}
		acc.facturado = acc.facturado.Add(t.Facturado)
		acc.txCount++
		acc.dates[t.FechaEmision.Format("2006-01-02")] = struct{}{}
	}

	stats := make([]DowStat, 0, len(byDow))
	for dow := 0; dow < 7; dow++ {
		acc, ok := byDow[dow]
		if !ok {
			continue
		}
		stat := DowStat{
			Day:       WeekdayName(dow),
			Facturado: acc.facturado.InexactFloat64(),
			TxCount:   acc.txCount,
		}
		if n := len(acc.dates); n > 0 {
			stat.AvgDailySales = stat.Facturado / float64(n)
		}
		stats = append(stats, stat)
	}
	return stats
}

// DemandHeatmap aggregates non-cancelled filtered rows per (weekday, hour).
func DemandHeatmap(filtered []Transaction) []HeatmapCell {
	type cellKey struct {
		dow  int
		hour int
	}
	type cellAccum struct {
		facturado decimal.Decimal
		txCount   int
	}
	cells := make(map[cellKey]*cellAccum)
	for _, t := range filtered {
		if t.IsCancelled() {
			continue
		}
		key := cellKey{dow: t.DowIdx, hour: t.Hour}
		acc, ok := cells[key]
		if !ok {
			acc = &cellAccum{}
			cells[key] = acc
		}
		acc.facturado = acc.facturado.Add(t.Facturado)
		acc.txCount++
	}

	keys := make([]cellKey, 0, len(cells))
	for key := range cells {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].dow != keys[j].dow {
			return keys[i].dow < keys[j].dow
		}
		return keys[i].hour < keys[j].hour
	})

	out := make([]HeatmapCell, 0, len(keys))
	for _, key := range keys {
		acc := cells[key]
		out = append(out, HeatmapCell{
			Day:       WeekdayName(key.dow),
			Hour:      key.hour,
			Facturado: acc.facturado.InexactFloat64(),
			TxCount:   acc.txCount,
		})
	}
	return out
}

// =============================================================================
// YEAR-TO-DATE COMPARISON
// =============================================================================

// CompareYTD benchmarks the latest year with non-cancelled data against the
// previous one, both truncated at the latest year's maximum day of year.
// Returns nil when no non-cancelled data exists.
func CompareYTD(window []Transaction) *YTDComparison {
	var maxDate time.Time
	latestYear := 0
	for _, t := range window {
		if t.IsCancelled() {
			continue
		}
		if t.Year > latestYear || (t.Year == latestYear && t.FechaEmision.After(maxDate)) {
			latestYear = t.Year
			maxDate = t.FechaEmision
		}
	}
	if latestYear == 0 {
		return nil
	}

	limit := maxDate.YearDay()
	prevYear := latestYear - 1
	var facturadoLatest, facturadoPrev decimal.Decimal
	var txLatest, txPrev int
	for _, t := range window {
		if t.IsCancelled() || t.FechaEmision.YearDay() > limit {
			continue
		}
		switch t.Year {
		case latestYear:
			facturadoLatest = facturadoLatest.Add(t.Facturado)
			txLatest++
		case prevYear:
			facturadoPrev = facturadoPrev.Add(t.Facturado)
			txPrev++
		}
	}

	cmp := &YTDComparison{
		LimitDate:         maxDate.Format("2006-01-02"),
		LatestYear:        latestYear,
		PreviousYear:      prevYear,
		FacturadoLatest:   facturadoLatest.InexactFloat64(),
		FacturadoPrevious: facturadoPrev.InexactFloat64(),
		TxLatest:          txLatest,
		TxPrevious:        txPrev,
	}
	if facturadoPrev.IsPositive() {
		cmp.GrowthRatePct = facturadoLatest.Sub(facturadoPrev).Div(facturadoPrev).InexactFloat64() * 100
	}
	return cmp
}
