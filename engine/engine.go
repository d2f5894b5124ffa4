/*
engine.go - Per-request orchestration of the aggregation modules

PURPOSE:
  Composes the independent aggregation modules into the three response
  bundles the API serves, plus the client history search. Each method takes
  the canonical table (an immutable snapshot) and a filter spec, runs
  synchronously to completion, and sanitizes the merged result once at the
  end. Nothing here mutates shared state, so concurrent calls over the same
  snapshot need no coordination.

FILTER ASYMMETRY:
  Historical yearly/monthly/daily series honor the year/month window but
  ignore status/tipo/search; day-of-week, heatmap, and everything in the
  insights and transactions bundles run over the fully filtered view. This
  asymmetry is intentional: trend bars stay comparable while the active
  filter highlights a sub-segment.
*/
package engine

import "time"

const (
	topDebtorsLimit    = 5
	topDiscountsLimit  = 10
	anuladasAuditLimit = 100
)

// Engine computes response bundles over canonical snapshots. The clock is
// injectable so "as of now" projections stay testable.
type Engine struct {
	now func() time.Time
}

// New creates an engine using the wall clock.
func New() *Engine {
	return &Engine{now: time.Now}
}

// NewWithClock creates an engine with a fixed clock, for tests.
func NewWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// =============================================================================
// RESPONSE BUNDLES
// =============================================================================

// SummaryBundle is the payload of the summary endpoint.
type SummaryBundle struct {
	Summary            SummaryKPIs    `json:"summary"`
	KpisByYear         []KpiItem      `json:"kpis_by_year"`
	MonthlySeasonality []KpiItem      `json:"monthly_seasonality"`
	DailyTrends        []DailyPoint   `json:"daily_trends"`
	DowAnalysis        []DowStat      `json:"dow_analysis"`
	DemandaHeatmap     []HeatmapCell  `json:"demanda_heatmap"`
	YtdComparison      *YTDComparison `json:"ytd_comparison,omitempty"`
}

// InsightsBundle is the payload of the insights endpoint.
type InsightsBundle struct {
	CustomerInsights  CustomerInsights   `json:"customer_insights"`
	DataQuality       DataQuality        `json:"data_quality"`
	PaymentMixData    []PaymentMixItem   `json:"payment_mix_data"`
	PaymentMixByYear  []YearlyPaymentMix `json:"payment_mix"`
	AgingAnalysis     []AgingBucket      `json:"aging_analysis"`
	TopDebtors        []Debtor           `json:"top_debtors"`
	DiscountsAnalysis DiscountsAnalysis  `json:"discounts_analysis"`
	AnuladasAudit     []DrilldownRow     `json:"anuladas_audit"`
}

// TransactionsBundle is the payload of the transactions endpoint.
type TransactionsBundle struct {
	DrilldownData   []DrilldownRow   `json:"drilldown_data"`
	PendingInvoices []PendingInvoice `json:"pending_invoices"`
}

// =============================================================================
// COMPUTATION
// =============================================================================

// Summary computes the KPI and time-series bundle.
func (e *Engine) Summary(canonical []Transaction, spec FilterSpec) SummaryBundle {
	filtered := Apply(canonical, spec)
	window := Apply(canonical, spec.WindowOnly())

	bundle := SummaryBundle{
		Summary:            Summarize(filtered),
		KpisByYear:         YearlyKPIs(window),
		MonthlySeasonality: MonthlySeasonality(window),
		DailyTrends:        DailyTrends(window),
		DowAnalysis:        DowAnalysis(filtered),
		DemandaHeatmap:     DemandHeatmap(filtered),
		YtdComparison:      CompareYTD(window),
	}
	Sanitize(&bundle)
	return bundle
}

// Insights computes the customer, quality, payment, aging, and discount
// bundle. The aging reference date comes from the unfiltered canonical
// table; everything else uses the filtered view.
func (e *Engine) Insights(canonical []Transaction, cols ColumnSet, spec FilterSpec) InsightsBundle {
	filtered := Apply(canonical, spec)

	bundle := InsightsBundle{
		CustomerInsights:  AnalyzeCustomers(filtered),
		DataQuality:       ScanQuality(canonical, cols),
		PaymentMixData:    PaymentMix(filtered),
		PaymentMixByYear:  PaymentMixByYear(filtered),
		AgingAnalysis:     Aging(filtered, ReferenceDate(canonical)),
		TopDebtors:        TopDebtors(filtered, topDebtorsLimit),
		DiscountsAnalysis: AnalyzeDiscounts(filtered, topDiscountsLimit),
		AnuladasAudit:     CancelledAudit(filtered, anuladasAuditLimit),
	}
	Sanitize(&bundle)
	return bundle
}

// Transactions computes the row-level bundle.
func (e *Engine) Transactions(canonical []Transaction, spec FilterSpec) TransactionsBundle {
	filtered := Apply(canonical, spec)

	bundle := TransactionsBundle{
		DrilldownData:   Drilldown(filtered),
		PendingInvoices: PendingInvoices(filtered, e.now()),
	}
	Sanitize(&bundle)
	return bundle
}

// ClientSearch returns the full history of clients matching the query.
func (e *Engine) ClientSearch(canonical []Transaction, query string) []DrilldownRow {
	rows := SearchClientHistory(canonical, query)
	Sanitize(&rows)
	return rows
}
