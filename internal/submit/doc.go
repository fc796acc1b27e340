// Package submit turns filled template rows into XML instances and posts
// them to the submission endpoint.
//
// Each row becomes one envelope:
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<aFormUID id="aFormUID">
//	  <start>...</start>
//	  <end>...</end>
//	  <hh><name>Ann</name></hh>
//	  <hh><member><age>7</age></member></hh>
//	  <meta><instanceID>uuid:...</instanceID></meta>
//	</aFormUID>
//
// Question elements are the per-field fragments of the flattened form. With
// merging enabled, fragments that share group ancestors are folded into one
// subtree instead.
//
// A Runner fans rows out to a bounded number of workers and, when given a
// ledger, skips rows whose content was already accepted.
package submit
