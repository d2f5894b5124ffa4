/*
preprocess.go - Raw records to canonical transaction table

PURPOSE:
  Applies the normalizer to every raw record and produces the canonical
  Transaction table the aggregation modules consume. This is the only place
  where defaults are filled and derived calendar fields are computed.

COLUMN-LEVEL DEFAULTS:
  A column the source never supplies gets its default applied once for the
  whole table (estado=VIGENTE, cliente=Desconocido, comprobante=S/N,
  tipo=Venta, amounts=0, payment=Otros). Per-row blanks inside a present
  column are preserved so the data-quality scan can still see them.

DROPPED RECORDS:
  A record whose emission date cannot be parsed is excluded from the
  canonical table. That is the only way a record disappears here; malformed
  amounts merely become zero.

PURITY:
  Preprocess is pure and idempotent: feeding its own output back through
  (as already-typed raw values) changes no monetary or date value.
*/
package engine

import (
	"strings"
	"time"
)

// weekdayNames maps Monday=0 ... Sunday=6 to localized day names.
var weekdayNames = [7]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

// WeekdayName returns the localized name for a Monday=0 weekday index.
func WeekdayName(dowIdx int) string {
	if dowIdx < 0 || dowIdx > 6 {
		return "Unknown"
	}
	return weekdayNames[dowIdx]
}

// mondayIndex converts Go's Sunday=0 weekday to Monday=0.
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// Preprocess builds the canonical transaction table from a raw fetch.
// Records with unparsable emission dates are dropped; everything else is
// recovered via defaults.
func Preprocess(table RawTable) []Transaction {
	out := make([]Transaction, 0, len(table.Records))
	cols := table.Columns

	for _, r := range table.Records {
		fecha, ok := NormalizeDate(r.FechaEmision)
		if !ok {
			continue
		}

		t := Transaction{
			ID:           r.ID,
			FechaEmision: fecha,
			Year:         fecha.Year(),
			Month:        int(fecha.Month()),
			DowIdx:       mondayIndex(fecha.Weekday()),
			Hour:         fecha.Hour(),
		}
		t.WeekdayName = WeekdayName(t.DowIdx)

		if cols.Facturado {
			t.Facturado = NormalizeAmount(r.Facturado)
		}
		if cols.Pagado {
			t.Pagado = NormalizeAmount(r.Pagado)
		}
		if cols.Pendiente {
			t.Pendiente = NormalizeAmount(r.Pendiente)
		}
		if cols.Descuento {
			t.Descuento = NormalizeAmount(r.Descuento)
		}

		t.Estado = defaultColumn(cols.Estado, r.Estado, EstadoVigente)
		t.Cliente = defaultColumn(cols.Cliente, r.Cliente, DefaultCliente)
		t.Comprobante = defaultColumn(cols.Comprobante, r.Comprobante, DefaultComprobante)
		t.Tipo = defaultColumn(cols.Tipo, r.Tipo, DefaultTipo)

		if cols.FormaPago {
			t.FormaPagoRaw = r.FormaPagoRaw
			t.PaymentType = ClassifyPayment(r.FormaPagoRaw)
		} else {
			t.PaymentType = PaymentOther
		}

		t.HasDiscount = t.Descuento.IsPositive()

		out = append(out, t)
	}
	return out
}

// defaultColumn applies a column-level default: when the column is absent
// from the source every row gets the fallback; when present the raw value is
// kept as-is (trimmed), blanks included.
func defaultColumn(present bool, value, fallback string) string {
	if !present {
		return fallback
	}
	return strings.TrimSpace(value)
}

// Retable converts a canonical table back into raw form. Used to assert
// preprocessing idempotence: Preprocess(Retable(Preprocess(raw))) must leave
// every monetary and date value untouched.
func Retable(canonical []Transaction) RawTable {
	records := make([]RawRecord, len(canonical))
	for i, t := range canonical {
		records[i] = RawRecord{
			ID:           t.ID,
			FechaEmision: t.FechaEmision,
			Comprobante:  t.Comprobante,
			Cliente:      t.Cliente,
			Facturado:    t.Facturado,
			Pagado:       t.Pagado,
			Pendiente:    t.Pendiente,
			Descuento:    t.Descuento,
			Estado:       t.Estado,
			Tipo:         t.Tipo,
			FormaPagoRaw: t.FormaPagoRaw,
			IsActive:     true,
			SourceYear:   t.Year,
		}
	}
	return RawTable{Records: records, Columns: AllColumns()}
}
