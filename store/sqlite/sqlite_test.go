package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetwell/billing-engine/engine"
	"github.com/vetwell/billing-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestFetchActive_RoundtripPreservesRawText(t *testing.T) {
	// GIVEN: A record whose amounts are localized text
	// WHEN: Inserting and fetching
	// THEN: The text reaches the caller byte for byte - normalization is not
	//       the store's job

	store := newStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, engine.RawRecord{
		FechaEmision: "2025-07-03 13:29:00",
		Comprobante:  "BOLETA: 001 - 004865",
		Cliente:      "Veterinaria San Martín",
		Facturado:    "$1.234,56",
		Pagado:       "1.234,56",
		Pendiente:    "0",
		Descuento:    nil,
		Estado:       engine.EstadoPagado,
		Tipo:         "Venta",
		FormaPagoRaw: "tarjeta de crédito",
		IsActive:     true,
		SourceYear:   2025,
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	raw, err := store.FetchActive(ctx)
	require.NoError(t, err)
	require.Len(t, raw.Records, 1)

	r := raw.Records[0]
	assert.Equal(t, "$1.234,56", r.Facturado)
	assert.Equal(t, "1.234,56", r.Pagado)
	assert.Nil(t, r.Descuento)
	assert.Equal(t, "Veterinaria San Martín", r.Cliente)
	assert.Equal(t, "tarjeta de crédito", r.FormaPagoRaw)
	assert.Equal(t, 2025, r.SourceYear)
	assert.True(t, r.IsActive)
}

func TestFetchActive_ReportsColumnSet(t *testing.T) {
	store := newStore(t)

	raw, err := store.FetchActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engine.AllColumns(), raw.Columns)
}

func TestFetchActive_SkipsDeactivatedRecords(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	keep, err := store.Insert(ctx, engine.RawRecord{FechaEmision: "2025-01-01 10:00:00", IsActive: true})
	require.NoError(t, err)
	drop, err := store.Insert(ctx, engine.RawRecord{FechaEmision: "2025-01-02 10:00:00", IsActive: true})
	require.NoError(t, err)

	require.NoError(t, store.Deactivate(ctx, drop))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	raw, err := store.FetchActive(ctx)
	require.NoError(t, err)
	require.Len(t, raw.Records, 1)
	assert.Equal(t, keep, raw.Records[0].ID)
}

func TestFetchActive_PaginatesAcrossBatchBoundary(t *testing.T) {
	// GIVEN: More rows than one fetch batch (1000)
	// WHEN: Fetching
	// THEN: Every row arrives exactly once, in id order

	store := newStore(t)
	ctx := context.Background()

	const total = 1003
	records := make([]engine.RawRecord, total)
	for i := range records {
		records[i] = engine.RawRecord{
			FechaEmision: "2025-01-01 10:00:00",
			Comprobante:  fmt.Sprintf("BOLETA: %06d", i+1),
			IsActive:     true,
		}
	}
	require.NoError(t, store.InsertBatch(ctx, records))

	raw, err := store.FetchActive(ctx)
	require.NoError(t, err)
	require.Len(t, raw.Records, total)

	for i := 1; i < len(raw.Records); i++ {
		assert.Greater(t, raw.Records[i].ID, raw.Records[i-1].ID, "ids must be strictly increasing")
	}
	assert.Equal(t, "BOLETA: 000001", raw.Records[0].Comprobante)
	assert.Equal(t, fmt.Sprintf("BOLETA: %06d", total), raw.Records[total-1].Comprobante)
}

func TestFetchActive_FeedsPreprocessorDirectly(t *testing.T) {
	// End-to-end: store output is valid preprocessor input.
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertBatch(ctx, []engine.RawRecord{
		{FechaEmision: "2025-07-03 13:29:00", Facturado: "$1.234,56", Estado: engine.EstadoPagado, IsActive: true},
		{FechaEmision: "broken", Facturado: "100", Estado: engine.EstadoPagado, IsActive: true},
	}))

	raw, err := store.FetchActive(ctx)
	require.NoError(t, err)

	table := engine.Preprocess(raw)
	require.Len(t, table, 1)
	assert.Equal(t, "1234.56", table[0].Facturado.String())
	assert.Equal(t, 2025, table[0].Year)
}

func TestInsert_RendersTypedValuesAsText(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, engine.RawRecord{
		FechaEmision: "2025-01-01 10:00:00",
		Facturado:    1234.5, // float, not string
		Pagado:       1000,   // int
		IsActive:     true,
	})
	require.NoError(t, err)

	raw, err := store.FetchActive(ctx)
	require.NoError(t, err)
	require.Len(t, raw.Records, 1)
	assert.Equal(t, "1234.5", raw.Records[0].Facturado)
	assert.Equal(t, "1000", raw.Records[0].Pagado)
}
