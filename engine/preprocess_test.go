package engine_test

import (
	"testing"

	"github.com/vetwell/billing-engine/engine"
)

func TestPreprocess_DerivedCalendarFields(t *testing.T) {
	// 2025-07-03 is a Thursday (Monday=0 index 3).
	tx := mkTx(t, txSpec{fecha: "2025-07-03 13:29:00"})

	if tx.Year != 2025 || tx.Month != 7 {
		t.Errorf("wrong year/month: %d/%d", tx.Year, tx.Month)
	}
	if tx.DowIdx != 3 || tx.WeekdayName != "Jueves" {
		t.Errorf("wrong weekday: idx=%d name=%q", tx.DowIdx, tx.WeekdayName)
	}
	if tx.Hour != 13 {
		t.Errorf("wrong hour: %d", tx.Hour)
	}
}

func TestPreprocess_SundayIsIndexSix(t *testing.T) {
	tx := mkTx(t, txSpec{fecha: "2025-07-06 09:00:00"})
	if tx.DowIdx != 6 || tx.WeekdayName != "Domingo" {
		t.Errorf("expected Domingo/6, got %q/%d", tx.WeekdayName, tx.DowIdx)
	}
}

func TestPreprocess_DropsUnparsableDates(t *testing.T) {
	// GIVEN: Three records, one with a broken emission date
	// WHEN: Preprocessing
	// THEN: Only the broken record is dropped

	table := engine.Preprocess(engine.RawTable{
		Records: []engine.RawRecord{
			{ID: 1, FechaEmision: "2025-01-01 10:00:00", Facturado: 100.0},
			{ID: 2, FechaEmision: "not-a-date", Facturado: 200.0},
			{ID: 3, FechaEmision: "2025-01-03 10:00:00", Facturado: 300.0},
		},
		Columns: engine.AllColumns(),
	})

	if len(table) != 2 {
		t.Fatalf("expected 2 canonical records, got %d", len(table))
	}
	for _, tx := range table {
		if tx.ID == 2 {
			t.Errorf("record with invalid date survived preprocessing")
		}
	}
}

func TestPreprocess_AbsentColumnsGetDefaults(t *testing.T) {
	// GIVEN: A source that supplies only id + emission date
	// WHEN: Preprocessing with an empty ColumnSet
	// THEN: Column-level defaults apply across the table

	table := engine.Preprocess(engine.RawTable{
		Records: []engine.RawRecord{{ID: 1, FechaEmision: "2025-01-01 10:00:00"}},
		Columns: engine.ColumnSet{},
	})

	tx := table[0]
	if tx.Estado != engine.EstadoVigente {
		t.Errorf("estado default: got %q", tx.Estado)
	}
	if tx.Cliente != engine.DefaultCliente {
		t.Errorf("cliente default: got %q", tx.Cliente)
	}
	if tx.Comprobante != engine.DefaultComprobante {
		t.Errorf("comprobante default: got %q", tx.Comprobante)
	}
	if tx.Tipo != engine.DefaultTipo {
		t.Errorf("tipo default: got %q", tx.Tipo)
	}
	if tx.PaymentType != engine.PaymentOther {
		t.Errorf("payment default: got %q", tx.PaymentType)
	}
	if !tx.Facturado.IsZero() || !tx.Pagado.IsZero() || !tx.Pendiente.IsZero() || !tx.Descuento.IsZero() {
		t.Errorf("absent monetary columns should default to zero")
	}
}

func TestPreprocess_PerRowBlanksArePreserved(t *testing.T) {
	// A blank client in a present column stays blank so the quality scan can
	// count it; the Desconocido default is column-level only.

	table := engine.Preprocess(engine.RawTable{
		Records: []engine.RawRecord{{ID: 1, FechaEmision: "2025-01-01 10:00:00", Cliente: ""}},
		Columns: engine.AllColumns(),
	})

	if table[0].Cliente != "" {
		t.Errorf("blank client was rewritten to %q", table[0].Cliente)
	}
}

func TestPreprocess_LocalizedAmountsAndDiscountFlag(t *testing.T) {
	table := engine.Preprocess(engine.RawTable{
		Records: []engine.RawRecord{
			{ID: 1, FechaEmision: "2025-01-01 10:00:00", Facturado: "$1.234,56", Descuento: "100"},
			{ID: 2, FechaEmision: "2025-01-02 10:00:00", Facturado: nil, Descuento: ""},
		},
		Columns: engine.AllColumns(),
	})

	if got := table[0].Facturado.String(); got != "1234.56" {
		t.Errorf("localized amount: got %s", got)
	}
	if !table[0].HasDiscount {
		t.Errorf("positive descuento should set HasDiscount")
	}
	if !table[1].Facturado.IsZero() || table[1].HasDiscount {
		t.Errorf("nil/blank amounts should normalize to zero without discount flag")
	}
}

func TestPreprocess_Idempotent(t *testing.T) {
	// GIVEN: A canonical table fed back through preprocessing
	// WHEN: Running Preprocess over Retable(canonical)
	// THEN: No monetary or date value changes

	original := mkTable(t,
		txSpec{fecha: "2025-07-03 13:29:00", facturado: 623400.10, pagado: 623400.00},
		txSpec{fecha: "2024-02-29 08:15:00", facturado: 1923180.00, pendiente: 12.5, descuento: 3},
	)

	again := engine.Preprocess(engine.Retable(original))
	if len(again) != len(original) {
		t.Fatalf("idempotent rerun changed record count: %d -> %d", len(original), len(again))
	}
	for i := range original {
		a, b := original[i], again[i]
		if !a.FechaEmision.Equal(b.FechaEmision) {
			t.Errorf("record %d: date changed %v -> %v", i, a.FechaEmision, b.FechaEmision)
		}
		if !a.Facturado.Equal(b.Facturado) || !a.Pagado.Equal(b.Pagado) ||
			!a.Pendiente.Equal(b.Pendiente) || !a.Descuento.Equal(b.Descuento) {
			t.Errorf("record %d: monetary value changed on rerun", i)
		}
	}
}
