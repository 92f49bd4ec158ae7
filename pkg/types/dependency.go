package types

import "strings"

// Dependency is a bit set describing which parts of the dynamic context an
// expression reads.
type Dependency uint8

// Dependency bits.
const (
	NoDependency Dependency = 0
	// ContextSet: the expression reads the current context sequence.
	ContextSet Dependency = 1 << iota
	// ContextItem: the expression must be evaluated once per context item.
	ContextItem
)

// DependsOn reports whether d has every bit of on set.
func (d Dependency) DependsOn(on Dependency) bool {
	return d&on == on && on != NoDependency
}

// String lists the set bits, e.g. "CONTEXT_SET | CONTEXT_ITEM".
func (d Dependency) String() string {
	if d == NoDependency {
		return "NO_DEPENDENCY"
	}
	var names []string
	if d&ContextSet != 0 {
		names = append(names, "CONTEXT_SET")
	}
	if d&ContextItem != 0 {
		names = append(names, "CONTEXT_ITEM")
	}
	return strings.Join(names, " | ")
}
