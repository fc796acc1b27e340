// Package workbook writes the data-entry template workbook and reads filled
// templates back.
//
// The written workbook has up to four sheets:
//
//	template        one column per schema header, frozen header row,
//	                header comments and dropdowns for choice columns
//	choices         one column of codes per choice header
//	fields_catalog  one row per field
//	XML_Formula     flat tag rows, each followed by its nested template
package workbook
