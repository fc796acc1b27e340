// Package xmlfrag renders nested XML fragments for flattened fields.
//
// A fragment wraps the field element in one element per enclosing group,
// outermost first:
//
//	path [hh member name], value Jane
//	<hh><member><name>Jane</name></member></hh>
//
// Each fragment is rendered on its own. Fields that share a group prefix get
// separate copies of the shared ancestors; merging them into one subtree is
// left to the submission envelope builder.
package xmlfrag
