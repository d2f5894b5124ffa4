package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vetwell/billing-engine/engine"
)

// =============================================================================
// CURRENCY NORMALIZATION
// =============================================================================

func TestNormalizeAmount_IsTotal(t *testing.T) {
	// The normalizer must accept anything and never panic: nil, blanks, and
	// unparsable text all degrade to zero.

	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "0"},
		{"empty string", "", "0"},
		{"blank string", "   ", "0"},
		{"unparsable", "N/A", "0"},
		{"garbage symbols", "$$,,..", "0"},
		{"plain integer string", "1500", "1500"},
		{"localized currency", "$1.234,56", "1234.56"},
		{"localized with spaces", "$ 1 234,50", "1234.5"},
		{"thousands only", "1.000", "1000"},
		{"decimal comma", "12,5", "12.5"},
		{"float64", 1234.56, "1234.56"},
		{"int", 42, "42"},
		{"int64", int64(7), "7"},
		{"bool is not a number", true, "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := engine.NormalizeAmount(tc.in)
			want := decimal.RequireFromString(tc.want)
			if !got.Equal(want) {
				t.Errorf("NormalizeAmount(%v) = %s, want %s", tc.in, got, want)
			}
		})
	}
}

func TestNormalizeAmount_DecimalPassthrough(t *testing.T) {
	in := decimal.RequireFromString("623400.10")
	if got := engine.NormalizeAmount(in); !got.Equal(in) {
		t.Errorf("decimal passthrough changed value: %s", got)
	}
}

// =============================================================================
// DATE NORMALIZATION
// =============================================================================

func TestNormalizeDate_Layouts(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want time.Time
	}{
		{"iso with offset", "2025-07-03T13:29:00+04:00", time.Date(2025, 7, 3, 13, 29, 0, 0, time.UTC)},
		{"iso utc", "2025-07-03T13:29:00Z", time.Date(2025, 7, 3, 13, 29, 0, 0, time.UTC)},
		{"iso no offset", "2025-07-03T13:29:00", time.Date(2025, 7, 3, 13, 29, 0, 0, time.UTC)},
		{"space separated", "2025-07-03 13:29:00", time.Date(2025, 7, 3, 13, 29, 0, 0, time.UTC)},
		{"date only", "2025-07-03", time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := engine.NormalizeDate(tc.in)
			if !ok {
				t.Fatalf("NormalizeDate(%q) reported invalid", tc.in)
			}
			if !got.Equal(tc.want) {
				t.Errorf("NormalizeDate(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeDate_MixedOffsetsAreSubtractable(t *testing.T) {
	// GIVEN: Two records with different offsets but the same wall clock
	// WHEN: Normalized and subtracted
	// THEN: The difference is zero - offsets never leak into arithmetic

	a, okA := engine.NormalizeDate("2025-07-03T13:29:00-03:00")
	b, okB := engine.NormalizeDate("2025-07-03T13:29:00+02:00")
	if !okA || !okB {
		t.Fatal("offset timestamps should parse")
	}
	if a.Sub(b) != 0 {
		t.Errorf("wall clocks differ after normalization: %v vs %v", a, b)
	}
}

func TestNormalizeDate_Invalid(t *testing.T) {
	for _, in := range []any{"", "not-a-date", "32/13/2025", nil, 42} {
		if _, ok := engine.NormalizeDate(in); ok {
			t.Errorf("NormalizeDate(%v) should report invalid", in)
		}
	}
}

// =============================================================================
// PAYMENT CLASSIFICATION
// =============================================================================

func TestClassifyPayment_RuleTable(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Tarjeta de crédito", engine.PaymentCard},
		{"pago TRANSBANK web", engine.PaymentCard},
		{"tbk", engine.PaymentCard},
		{"Transferencia bancaria", engine.PaymentTransfer},
		{"EFECTIVO", engine.PaymentCash},
		{"venta sin boleta", engine.PaymentNoTicket},
		{"cheque", engine.PaymentOther},
		{"", engine.PaymentOther},
	}

	for _, tc := range cases {
		if got := engine.ClassifyPayment(tc.in); got != tc.want {
			t.Errorf("ClassifyPayment(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClassifyPayment_FirstMatchWins(t *testing.T) {
	// "transferencia tarjeta" mentions both channels; the card rule is
	// earlier in the table so it must win.
	if got := engine.ClassifyPayment("transferencia tarjeta"); got != engine.PaymentCard {
		t.Errorf("expected first rule to win, got %q", got)
	}
}
