// Package diagnostic provides structured, non-fatal findings reported while
// flattening a form definition.
//
// Key capabilities:
//   - Shape findings (nodes without a name, unbalanced end markers)
//   - Choice resolution findings with near-miss list suggestions
//   - Classification fallbacks for unrecognized question types
//   - Stable codes so callers can filter or count findings
package diagnostic
