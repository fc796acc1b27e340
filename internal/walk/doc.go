// Package walk flattens an ordered survey node list into field records.
//
// The walk keeps one piece of state, the stack of open group/repeat scopes,
// as an immutable linked list threaded through each step. Every data-bearing
// node becomes a form.FieldRecord whose path is the open scopes plus the
// node's own name.
//
// Malformed input never stops the walk: nodes without a name, end markers
// with nothing open, unknown types, and unresolvable choice lists are
// recorded as diagnostics and the walk continues.
package walk
