// Package flatten runs the whole survey flattening pipeline.
//
// A Flattener is built once from a Config and can be reused for any number
// of forms. Flatten walks the survey, assigns column headers and derives the
// reference tables exported next to the template:
//
//	res := flatten.New(flatten.Config{}).Flatten(asset.Content)
//	res.Schema.Headers   // template columns
//	res.Catalog()        // fields_catalog rows
//	res.XMLRows()        // XML_Formula rows
//
// The pipeline is pure. It does no I/O, does not log and returns the same
// result for the same input.
package flatten
