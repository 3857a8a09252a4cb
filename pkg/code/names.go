package code

import "strconv"

// NameGenerator produces unique label and synthetic-variable names for a
// single compilation. Names are allocated from per-instance counters
// starting at 0, so two compilations of the same input with fresh
// generators produce identical names given the same input.
//
// The underscore prefix is a reserved namespace: the parser/linter that
// feeds this compiler disallows it for user identifiers, so generated
// names never collide with source-level ones.
type NameGenerator struct {
	labelCounter int
	varCounter   int
}

// NewNameGenerator returns a generator whose counters start at zero.
func NewNameGenerator() *NameGenerator { return &NameGenerator{} }

// FreshLabel returns the next unique label name, of the form "_l<N>".
func (g *NameGenerator) FreshLabel() string {
	name := "_l" + strconv.Itoa(g.labelCounter)
	g.labelCounter++
	return name
}

// FreshVariable returns the next unique synthetic variable name, of the
// form "_v<N>".
func (g *NameGenerator) FreshVariable() string {
	name := "_v" + strconv.Itoa(g.varCounter)
	g.varCounter++
	return name
}
