/*
Package engine provides the analytics aggregation engine for comprobante
(billing document) data.

PURPOSE:
  This package normalizes heterogeneous raw billing records into a canonical
  typed table, applies filter predicates, and computes the derived aggregates
  behind the dashboard: period KPIs, time-series seasonality, customer
  concentration, receivables aging, payment-method mix, data-quality metrics,
  and row-level drilldowns.

KEY CONCEPTS IN THIS FILE (types.go):
  - RawRecord:   One loosely-typed record as delivered by the source
  - ColumnSet:   Which optional columns the source actually supplies
  - RawTable:    The full raw fetch (records + column presence)
  - Transaction: The canonical, immutable, fully-typed form
  - FilterSpec:  The predicate language applied over the canonical table

DESIGN PRINCIPLES:
  1. Immutability: the canonical table is built once per refresh and never
     mutated; every module reads, none writes
  2. Precision: monetary fields use decimal.Decimal so accounting identities
     hold to the cent across the whole history
  3. Totality: normalization never fails; malformed values degrade to zero
     and only unparsable dates drop a record
  4. Explicit schema: column presence is declared up front (ColumnSet), not
     probed at runtime

SEE ALSO:
  - normalize.go:  currency/date normalization and payment classification
  - preprocess.go: RawTable -> []Transaction
  - filter.go:     FilterSpec application
*/
package engine

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUS AND DEFAULT VALUES
// =============================================================================

const (
	EstadoVigente   = "VIGENTE"
	EstadoPagado    = "PAGADO"
	EstadoPendiente = "PENDIENTE"
	EstadoAnulado   = "ANULADO"
)

const (
	DefaultCliente     = "Desconocido"
	DefaultComprobante = "S/N"
	DefaultTipo        = "Venta"
)

// Payment type labels produced by the classifier.
const (
	PaymentCard     = "Tarjeta/POS"
	PaymentTransfer = "Transferencia"
	PaymentCash     = "Efectivo"
	PaymentNoTicket = "Sin Boleta"
	PaymentOther    = "Otros"
)

// =============================================================================
// RAW INPUT
// =============================================================================

// RawRecord is one billing record as delivered by the source collaborator.
// Monetary fields and the emission date are loosely typed: the source may
// deliver numbers, localized currency strings, or nothing at all.
type RawRecord struct {
	ID           int64
	FechaEmision any // string in various encodings, or time.Time
	Comprobante  string
	Cliente      string
	Facturado    any // float64, int, int64, decimal.Decimal, string, or nil
	Pagado       any
	Pendiente    any
	Descuento    any
	Estado       string
	Tipo         string
	FormaPagoRaw string
	IsActive     bool
	SourceYear   int
}

// ColumnSet declares which optional columns the source supplies. A column
// that is absent gets its column-level default applied once during
// preprocessing; per-row blanks in a present column are preserved.
type ColumnSet struct {
	Comprobante bool
	Cliente     bool
	Facturado   bool
	Pagado      bool
	Pendiente   bool
	Descuento   bool
	Estado      bool
	Tipo        bool
	FormaPago   bool
}

// AllColumns returns a ColumnSet with every optional column present.
func AllColumns() ColumnSet {
	return ColumnSet{
		Comprobante: true,
		Cliente:     true,
		Facturado:   true,
		Pagado:      true,
		Pendiente:   true,
		Descuento:   true,
		Estado:      true,
		Tipo:        true,
		FormaPago:   true,
	}
}

// RawTable is the complete raw fetch handed to the preprocessor.
type RawTable struct {
	Records []RawRecord
	Columns ColumnSet
}

// =============================================================================
// CANONICAL TRANSACTION
// =============================================================================

// Transaction is the canonical form of one billing record. Created once per
// refresh cycle by Preprocess and read-only thereafter.
type Transaction struct {
	ID           int64
	FechaEmision time.Time
	Comprobante  string
	Cliente      string
	Facturado    decimal.Decimal
	Pagado       decimal.Decimal
	Pendiente    decimal.Decimal
	Descuento    decimal.Decimal
	Estado       string
	Tipo         string
	FormaPagoRaw string

	// Derived fields
	PaymentType string
	Year        int
	Month       int
	DowIdx      int    // Monday=0 ... Sunday=6
	WeekdayName string // localized day name
	Hour        int
	HasDiscount bool
}

// IsCancelled reports whether the transaction was voided.
func (t Transaction) IsCancelled() bool {
	return strings.ToUpper(strings.TrimSpace(t.Estado)) == EstadoAnulado
}

// =============================================================================
// FILTER SPECIFICATION
// =============================================================================

// FilterSpec is the predicate language applied over the canonical table.
// Zero values (0, "all", "") mean "no constraint" for that dimension.
//
// Special case: Status == "VIGENTE" is a synthetic "active" filter meaning
// "not ANULADO", not a literal status match.
type FilterSpec struct {
	Year   int
	Month  int
	Status string
	Tipo   string
	Search string
}

// IsEmpty reports whether the spec constrains nothing (the identity filter).
func (f FilterSpec) IsEmpty() bool {
	return f.Year == 0 && f.Month == 0 &&
		(f.Status == "" || strings.EqualFold(f.Status, "all")) &&
		(f.Tipo == "" || strings.EqualFold(f.Tipo, "all")) &&
		f.Search == ""
}

// WindowOnly strips everything but the year/month narrowing. Historical
// time-series aggregates honor the requested window but intentionally ignore
// status/tipo/search so trend lines stay comparable across a changing filter.
func (f FilterSpec) WindowOnly() FilterSpec {
	return FilterSpec{Year: f.Year, Month: f.Month}
}
