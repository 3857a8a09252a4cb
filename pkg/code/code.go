package code

import (
	"fmt"

	"github.com/alanrodas/gobstones-compiler/pkg/ast"
)

// Code is an ordered, append-only sequence of instructions. Labels are
// unique across the whole sequence once compilation finishes.
type Code struct {
	instructions []Instr
}

// New returns an empty Code.
func New() *Code { return &Code{} }

// Produce appends instr, whose positions are already set by the caller.
// Lowerings call this (or ProduceList) instead of mutating the slice
// directly, keeping emission behind a single chokepoint.
func (c *Code) Produce(instr Instr) {
	c.instructions = append(c.instructions, instr)
}

// ProduceList appends every instruction in instrs, in order.
func (c *Code) ProduceList(instrs []Instr) {
	c.instructions = append(c.instructions, instrs...)
}

// Instructions returns the emitted sequence. Callers must not mutate it.
func (c *Code) Instructions() []Instr { return c.instructions }

// Len reports how many instructions have been emitted.
func (c *Code) Len() int { return len(c.instructions) }

// Validate checks the core structural invariants of a compiled sequence:
// every label is unique and every jump target names a label present in
// the sequence. It is a diagnostic helper, not something the compiler
// itself must call on a successful compile (which is always well-formed
// by construction), but it is useful for fuzz/property tests.
func (c *Code) Validate() error {
	labels := make(map[string]int)
	for _, instr := range c.instructions {
		if l, ok := instr.(Label); ok {
			labels[l.Name]++
		}
	}
	for name, count := range labels {
		if count > 1 {
			return fmt.Errorf("code: duplicate label %q", name)
		}
	}
	for _, instr := range c.instructions {
		var target string
		switch i := instr.(type) {
		case Jump:
			target = i.Target
		case JumpIfFalse:
			target = i.Target
		case JumpIfStructure:
			target = i.Target
		case JumpIfTuple:
			target = i.Target
		case Call:
			target = i.Target
		default:
			continue
		}
		if _, ok := labels[target]; !ok {
			return fmt.Errorf("code: jump target %q names no label in this Code", target)
		}
	}
	return nil
}

// PositionsComplete reports whether every instruction in c has both
// positions set. A Pos at the very start of a file is legitimately
// {1,1}, so this only rejects the zero value {0,0}.
func (c *Code) PositionsComplete() bool {
	for _, instr := range c.instructions {
		if instr.Start() == (ast.Pos{}) || instr.End() == (ast.Pos{}) {
			return false
		}
	}
	return true
}
