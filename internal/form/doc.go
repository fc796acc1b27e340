// Package form provides the in-memory model of a survey form definition
// (survey nodes and choice entries) and the field records produced by
// flattening it.
//
// Form definitions come from KoBoToolbox asset JSON or from a saved snapshot
// in JSON or YAML. Decoding is lenient where real assets are lenient:
//
//   - Labels may be a plain string, a mapping keyed by locale, or a list of
//     per-translation variants. Mapping order is preserved from the source.
//   - "required" may be a boolean, "yes"/"true()", or a number.
//   - Choice labels may live under "label" or "labels".
//
// # Key types
//
//   - Node: one survey row (question or group/repeat marker)
//   - ChoiceEntry: one row of a choice list
//   - FieldRecord: one flattened question with its full group path
//   - LogicalType: the closed set of classifications a field can carry
package form
