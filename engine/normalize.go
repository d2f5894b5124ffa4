/*
normalize.go - Currency, date, and payment-method normalization

PURPOSE:
  The source delivers monetary amounts as numbers, localized strings like
  "$1.234,56", empty strings, or nulls, and emission dates in several textual
  encodings with and without timezone offsets. This file turns all of that
  into canonical decimal/temporal values with defined fallback behavior.

RULES:
  NormalizeAmount: nil/empty -> 0; numeric passthrough; localized string
  cleanup (strip "$" and spaces, drop "." thousands separators, "," -> ".");
  unparsable -> 0. Total, never panics.

  NormalizeDate: tries a fixed set of layouts, most specific first. A parsed
  timestamp carrying an offset is flattened to the same wall clock in UTC so
  mixed-offset records can be subtracted from one another safely. Unparsable
  values report ok=false and the owning record is dropped upstream.

  ClassifyPayment: an ordered rule table evaluated first-match-wins. New
  payment channels are added by appending a rule, not by editing control flow.

SEE ALSO:
  - preprocess.go: applies these to every raw record
*/
package engine

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CURRENCY NORMALIZATION
// =============================================================================

// NormalizeAmount converts a loosely-typed raw monetary value to a decimal.
// It is total: any input yields a value, malformed input yields zero.
func NormalizeAmount(raw any) decimal.Decimal {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case string:
		return normalizeAmountString(v)
	default:
		return decimal.Zero
	}
}

func normalizeAmountString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	// "$1.234,56" -> "1234.56"
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// DATE NORMALIZATION
// =============================================================================

// dateLayouts are tried in order, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// NormalizeDate parses a loosely-typed emission timestamp. The second return
// value reports whether the input was parsable; callers drop the record when
// it is not.
func NormalizeDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return stripOffset(v), !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return stripOffset(t), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// stripOffset flattens an offset-carrying timestamp to the same wall clock
// in UTC. Downstream subtraction between records must not depend on which
// offset the source happened to attach.
func stripOffset(t time.Time) time.Time {
	if t.Location() == time.UTC {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// =============================================================================
// PAYMENT CLASSIFICATION
// =============================================================================

// paymentRule maps any of a set of substrings to a payment type label.
type paymentRule struct {
	contains []string
	label    string
}

// paymentRules is evaluated top to bottom, first match wins.
var paymentRules = []paymentRule{
	{contains: []string{"tarjeta", "transbank", "tbk"}, label: PaymentCard},
	{contains: []string{"transferencia"}, label: PaymentTransfer},
	{contains: []string{"efectivo"}, label: PaymentCash},
	{contains: []string{"sin boleta"}, label: PaymentNoTicket},
}

// ClassifyPayment maps a free-text payment description to one of the fixed
// payment type labels. Unrecognized (or empty) input maps to Otros.
func ClassifyPayment(raw string) string {
	p := strings.ToLower(raw)
	for _, rule := range paymentRules {
		for _, sub := range rule.contains {
			if strings.Contains(p, sub) {
				return rule.label
			}
		}
	}
	return PaymentOther
}
