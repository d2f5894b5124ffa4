package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetwell/billing-engine/engine"
)

func TestSummary_HistoricalSeriesIgnoreStatusFilter(t *testing.T) {
	// GIVEN: A mixed table and a status filter
	// WHEN: Computing the summary bundle
	// THEN: The headline KPIs honor the full filter, while the yearly series
	//       only narrows to the year/month window

	table := mkTable(t,
		txSpec{fecha: "2025-01-10 10:00:00", facturado: 100, estado: engine.EstadoPagado},
		txSpec{fecha: "2025-02-10 10:00:00", facturado: 200, estado: engine.EstadoPendiente, pendiente: 200},
	)

	bundle := engine.New().Summary(table, engine.FilterSpec{Year: 2025, Status: engine.EstadoPagado})

	assert.Equal(t, 1, bundle.Summary.TxCount)
	assert.InDelta(t, 100, bundle.Summary.Facturado, 1e-9)

	// Both states survive into the historical series.
	require.Len(t, bundle.KpisByYear, 2)
	require.Len(t, bundle.DailyTrends, 2)
	// Day-of-week runs over the fully filtered view.
	require.Len(t, bundle.DowAnalysis, 1)
}

func TestTransactions_UsesInjectedClockForOverdueDays(t *testing.T) {
	table := mkTable(t,
		txSpec{fecha: "2025-07-01 10:00:00", pendiente: 100},
	)
	fixed := time.Date(2025, 7, 11, 10, 0, 0, 0, time.UTC)

	bundle := engine.NewWithClock(func() time.Time { return fixed }).
		Transactions(table, engine.FilterSpec{})

	require.Len(t, bundle.PendingInvoices, 1)
	assert.Equal(t, 10, bundle.PendingInvoices[0].DaysOverdue)
	require.Len(t, bundle.DrilldownData, 1)
}

func TestInsights_AgingReferenceComesFromUnfilteredTable(t *testing.T) {
	// GIVEN: The newest record falls outside the filter window
	// WHEN: Computing insights filtered to 2024
	// THEN: Aging still measures against the global latest emission date
	//       (2025-01-31), so the 2024 invoice lands in the 60+ bucket

	table := mkTable(t,
		txSpec{fecha: "2024-11-01 10:00:00", pendiente: 100},
		txSpec{fecha: "2025-01-31 10:00:00", facturado: 50},
	)

	bundle := engine.New().Insights(table, engine.AllColumns(), engine.FilterSpec{Year: 2024})

	require.Len(t, bundle.AgingAnalysis, 4)
	assert.InDelta(t, 100, bundle.AgingAnalysis[3].Amount, 1e-9)
	// Quality always covers the whole table.
	assert.Equal(t, 2, bundle.DataQuality.TotalRecords)
}

func TestBundles_EmptyTableYieldsValidShapes(t *testing.T) {
	eng := engine.New()

	summary := eng.Summary(nil, engine.FilterSpec{})
	assert.Zero(t, summary.Summary.TxCount)
	assert.Nil(t, summary.YtdComparison)

	insights := eng.Insights(nil, engine.ColumnSet{}, engine.FilterSpec{})
	assert.Zero(t, insights.CustomerInsights.TotalClients)
	assert.NotNil(t, insights.AgingAnalysis)

	transactions := eng.Transactions(nil, engine.FilterSpec{})
	assert.NotNil(t, transactions.DrilldownData)
	assert.NotNil(t, transactions.PendingInvoices)
}
