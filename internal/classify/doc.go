// Package classify maps raw question-type tokens onto the closed set of
// logical types and recognizes structural markers.
//
// The mapping is an explicit finite table; any token outside it degrades to
// form.TypeUnknown. Classification never fails.
package classify
