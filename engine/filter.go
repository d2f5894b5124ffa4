/*
filter.go - Filter predicate application over the canonical table

PURPOSE:
  Applies a FilterSpec conjunctively over the canonical table, producing a
  filtered view without mutating the input. Single pass, all constraints
  checked per record.

SPECIAL CASE:
  Status "VIGENTE" is a synthetic "active" filter matching every record that
  is not ANULADO, rather than a literal status comparison.
*/
package engine

import "strings"

// Apply returns the records matching every constraint of the spec. The
// canonical table is never mutated; an empty spec returns the table as-is
// and an empty result is valid.
func Apply(table []Transaction, spec FilterSpec) []Transaction {
	if spec.IsEmpty() {
		return table
	}

	status := strings.ToUpper(strings.TrimSpace(spec.Status))
	filterStatus := status != "" && status != "ALL"
	tipo := strings.TrimSpace(spec.Tipo)
	filterTipo := tipo != "" && !strings.EqualFold(tipo, "all")
	search := strings.ToLower(strings.TrimSpace(spec.Search))

	out := make([]Transaction, 0, len(table))
	for _, t := range table {
		if spec.Year != 0 && t.Year != spec.Year {
			continue
		}
		if spec.Month != 0 && t.Month != spec.Month {
			continue
		}
		if filterStatus {
			if status == EstadoVigente {
				if t.IsCancelled() {
					continue
				}
			} else if !strings.EqualFold(strings.TrimSpace(t.Estado), status) {
				continue
			}
		}
		if filterTipo && !strings.EqualFold(t.Tipo, tipo) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Cliente), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// NonCancelled returns the records that are not ANULADO.
func NonCancelled(table []Transaction) []Transaction {
	out := make([]Transaction, 0, len(table))
	for _, t := range table {
		if !t.IsCancelled() {
			out = append(out, t)
		}
	}
	return out
}

// WithOutstanding returns the records carrying an outstanding balance.
func WithOutstanding(table []Transaction) []Transaction {
	out := make([]Transaction, 0, len(table))
	for _, t := range table {
		if t.Pendiente.IsPositive() {
			out = append(out, t)
		}
	}
	return out
}
