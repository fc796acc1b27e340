// Package columns assigns unique, stable column headers to flattened fields.
//
// Headers are assigned in record order:
//
//  1. Reserved leading headers (start, end) and trailing extra headers
//     (Comments) are taken before any question is named.
//  2. Root-level fields claim their bare names up front. A root-level field
//     has no group path to fall back on, so it owns its name.
//  3. A field takes its bare name when that name is free.
//  4. Otherwise it takes name + "__" + its group path joined by "__".
//  5. If that is taken too, "__2", "__3", ... is appended until unique.
//
// For the survey [begin g1, q1, end, q1] the question headers are
// ["q1__g1", "q1"].
//
// Assignment depends on record order; callers must not reorder records
// between walks if they want stable headers.
package columns
