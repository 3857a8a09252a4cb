// Package compiler lowers a linted Gobstones AST into a flat, labelled
// instruction stream for a stack-based virtual machine.
package compiler

import (
	"fmt"

	"github.com/alanrodas/gobstones-compiler/pkg/ast"
	"github.com/alanrodas/gobstones-compiler/pkg/code"
	"github.com/alanrodas/gobstones-compiler/pkg/messages"
	"github.com/alanrodas/gobstones-compiler/pkg/primitives"
	"github.com/alanrodas/gobstones-compiler/pkg/symtab"
)

// Error is raised for programmer errors: the input was not linted, or the
// compiler was asked to lower a construct that is a declared-but-not-yet-
// implemented extension point. It is never recovered from inside the
// compiler.
type Error struct {
	Message   string
	ErrorType string
	Pos       ast.Pos
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", e.ErrorType, e.Pos.Line, e.Pos.Column, e.Message)
}

func errf(pos ast.Pos, errType, format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), ErrorType: errType, Pos: pos}
}

// Compiler holds all per-compilation state: the code being built and the
// fresh-name counters. Two Compiler instances never share state, so two
// compilations can run concurrently.
type Compiler struct {
	code       *code.Code
	names      *code.NameGenerator
	symtab     symtab.SymbolTable
	primitives primitives.Catalog
	messages   messages.Catalog
}

// New creates a compiler that will query st for symbol information and
// prim for primitive membership, using msg for i18n lookups.
func New(st symtab.SymbolTable, prim primitives.Catalog, msg messages.Catalog) *Compiler {
	return &Compiler{
		code:       code.New(),
		names:      code.NewNameGenerator(),
		symtab:     st,
		primitives: prim,
		messages:   msg,
	}
}

// Compile lowers a whole AST to Code. It never fails on well-formed,
// linted input; it returns an error only for the unimplemented extension
// points named below.
func Compile(tree *ast.AST, st symtab.SymbolTable, prim primitives.Catalog, msg messages.Catalog) (*code.Code, error) {
	c := New(st, prim, msg)
	return c.Compile(tree)
}

// Compile is the top-level driver. If tree has no
// definitions, it emits a lone Return and stops. Otherwise it performs two
// sweeps: entry points first (so the entry point's instructions appear
// first in the emitted code), then callables.
func (c *Compiler) Compile(tree *ast.AST) (*code.Code, error) {
	if len(tree.Definitions) == 0 {
		c.produce(tree.StartPos, tree.EndPos, code.Return{})
		return c.code, nil
	}

	for _, def := range tree.Definitions {
		switch d := def.(type) {
		case ast.Program:
			if err := c.compileProgram(&d); err != nil {
				return nil, err
			}
		case ast.InteractiveProgram:
			if err := c.compileInteractiveProgram(&d); err != nil {
				return nil, err
			}
		}
	}

	for _, def := range tree.Definitions {
		switch d := def.(type) {
		case ast.Procedure:
			if err := c.compileProcedureDef(&d); err != nil {
				return nil, err
			}
		case ast.Function:
			if err := c.compileFunctionDef(&d); err != nil {
				return nil, err
			}
		}
	}

	return c.code, nil
}

// compileProgram lowers a Program by compiling its body and appending a
// Return. The body's statements net zero, so nothing is pushed for the
// Return beyond what a Return statement in the body itself left.
func (c *Compiler) compileProgram(p *ast.Program) error {
	for _, stmt := range p.Body {
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	c.produce(p.StartPos, p.EndPos, code.Return{})
	return nil
}

// compileInteractiveProgram is a reserved extension point: the covered
// source declares but does not lower interactive programs.
func (c *Compiler) compileInteractiveProgram(p *ast.InteractiveProgram) error {
	return errf(p.StartPos, "unimplemented", "InteractiveProgram lowering is not implemented")
}

// compileProcedureDef is a reserved extension point: the covered source
// declares but does not lower user procedure definitions.
func (c *Compiler) compileProcedureDef(p *ast.Procedure) error {
	return errf(p.StartPos, "unimplemented", "user Procedure lowering is not implemented")
}

// compileFunctionDef is a reserved extension point: the covered source
// declares but does not lower user function definitions.
func (c *Compiler) compileFunctionDef(f *ast.Function) error {
	return errf(f.StartPos, "unimplemented", "user Function lowering is not implemented")
}

// produce is the single chokepoint for emitting instructions: every
// lowering goes through here so positions are never forgotten.
func (c *Compiler) produce(start, end ast.Pos, instr code.Instr) {
	c.code.Produce(code.WithPos(instr, start, end))
}

func (c *Compiler) produceList(start, end ast.Pos, instrs ...code.Instr) {
	for _, instr := range instrs {
		c.produce(start, end, instr)
	}
}
