package walk

import (
	"strings"
)

// scope is one open group or repeat. A nil *scope is the empty stack.
// Scopes are never modified; push returns a new head sharing the parent.
type scope struct {
	name   string
	parent *scope
	depth  int
}

// push returns a new stack with name on top.
func (s *scope) push(name string) *scope {
	return &scope{name: name, parent: s, depth: s.Depth() + 1}
}

// pop returns the stack without its top, or false when the stack is empty.
func (s *scope) pop() (*scope, bool) {
	if s == nil {
		return nil, false
	}

	return s.parent, true
}

// Depth returns the number of open scopes.
func (s *scope) Depth() int {
	if s == nil {
		return 0
	}

	return s.depth
}

// path returns a fresh slice of the open scope names, outermost first,
// followed by leaf when it is non-empty.
func (s *scope) path(leaf string) []string {
	n := s.Depth()
	size := n
	if leaf != "" {
		size++
	}

	out := make([]string, size)
	for cur, i := s, n-1; cur != nil; cur, i = cur.parent, i-1 {
		out[i] = cur.name
	}

	if leaf != "" {
		out[n] = leaf
	}

	return out
}

// String returns the open scopes joined with "/".
func (s *scope) String() string {
	return strings.Join(s.path(""), "/")
}
