/*
dto.go - API-level response wrappers

PURPOSE:
  The engine's result bundles already carry their JSON contract (field names
  match the dashboard's expectations and every row-level date is rendered as
  a fixed-format string inside the engine). The API layer therefore only
  defines the error envelope here; bundles are serialized as-is.

SEE ALSO:
  - engine/engine.go: SummaryBundle, InsightsBundle, TransactionsBundle
  - engine/golden.go: GoldenReport
*/
package api

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
