// Package code defines the instruction model emitted by the compiler and
// the append-only Code sequence that holds it.
package code

import (
	"math/big"

	"github.com/alanrodas/gobstones-compiler/pkg/ast"
)

// Instr is implemented by every instruction variant. Every instruction
// carries the source positions of the AST node that produced it.
type Instr interface {
	Start() ast.Pos
	End() ast.Pos
	isInstr()
}

type Span struct {
	StartPos ast.Pos
	EndPos   ast.Pos
}

func (s Span) Start() ast.Pos { return s.StartPos }
func (s Span) End() ast.Pos   { return s.EndPos }

// --- stack pushes ---------------------------------------------------

// PushInteger pushes an arbitrary-precision integer constant.
type PushInteger struct {
	Span
	Value *big.Int
}

func (PushInteger) isInstr() {}

// PushString pushes a string constant.
type PushString struct {
	Span
	Value string
}

func (PushString) isInstr() {}

// PushVariable pushes the current value of a bound name.
type PushVariable struct {
	Span
	Name string
}

func (PushVariable) isInstr() {}

// --- variable binding -------------------------------------------------

// SetVariable pops the top of stack and binds it to Name, creating the
// binding on first use and type-checking against the prior value on
// re-assignment.
type SetVariable struct {
	Span
	Name string
}

func (SetVariable) isInstr() {}

// UnsetVariable removes a binding; a no-op if the name is not bound.
type UnsetVariable struct {
	Span
	Name string
}

func (UnsetVariable) isInstr() {}

// --- control flow -------------------------------------------------

// Label marks a position in the instruction stream; label names are
// unique within a Code.
type Label struct {
	Span
	Name string
}

func (Label) isInstr() {}

// Jump unconditionally transfers control to Target.
type Jump struct {
	Span
	Target string
}

func (Jump) isInstr() {}

// JumpIfFalse pops a Bool and jumps to Target if it is False.
type JumpIfFalse struct {
	Span
	Target string
}

func (JumpIfFalse) isInstr() {}

// JumpIfStructure jumps to Target if the (non-popped) top of stack is a
// structure built with Constructor.
type JumpIfStructure struct {
	Span
	Constructor string
	Target      string
}

func (JumpIfStructure) isInstr() {}

// JumpIfTuple jumps to Target if the (non-popped) top of stack is a tuple
// of the given Size.
type JumpIfTuple struct {
	Span
	Size   int
	Target string
}

func (JumpIfTuple) isInstr() {}

// Call invokes a user-defined callable at Target with NArgs arguments
// already on the stack.
type Call struct {
	Span
	Target string
	NArgs  int
}

func (Call) isInstr() {}

// Return pops the single return value and unwinds the current call.
type Return struct{ Span }

func (Return) isInstr() {}

// --- value construction -------------------------------------------------

// MakeTuple pops Size values and pushes a tuple of them.
type MakeTuple struct {
	Span
	Size int
}

func (MakeTuple) isInstr() {}

// MakeList pops Size values and pushes a list of them.
type MakeList struct {
	Span
	Size int
}

func (MakeList) isInstr() {}

// MakeStructure pops one value per name in FieldNames (in order) and
// pushes a structure value tagged with TypeName/Constructor.
type MakeStructure struct {
	Span
	TypeName    string
	Constructor string
	FieldNames  []string
}

func (MakeStructure) isInstr() {}

// UpdateStructure pops one value per name in FieldNames plus the subject
// structure, and pushes a copy of the subject with those fields replaced.
// Reserved extension point; not lowered to by the covered surface.
type UpdateStructure struct {
	Span
	TypeName    string
	Constructor string
	FieldNames  []string
}

func (UpdateStructure) isInstr() {}

// --- value inspection (non-popping) -------------------------------------------------

// ReadTupleComponent pushes the Index-th component of the (non-popped)
// tuple on top of stack.
type ReadTupleComponent struct {
	Span
	Index int
}

func (ReadTupleComponent) isInstr() {}

// ReadStructureField pushes the named field of the (non-popped) structure
// on top of stack.
type ReadStructureField struct {
	Span
	FieldName string
}

func (ReadStructureField) isInstr() {}

// --- stack utilities -------------------------------------------------

// Dup duplicates the top of stack.
type Dup struct{ Span }

func (Dup) isInstr() {}

// Pop discards the top of stack.
type Pop struct{ Span }

func (Pop) isInstr() {}

// Add is reserved; not used by the covered lowerings.
type Add struct{ Span }

func (Add) isInstr() {}

// --- dispatch -------------------------------------------------

// PrimitiveCall invokes a runtime primitive procedure or function by
// Name with NArgs arguments already on the stack.
type PrimitiveCall struct {
	Span
	Name  string
	NArgs int
}

func (PrimitiveCall) isInstr() {}

// --- global state -------------------------------------------------

// SaveState snapshots global/board state for later restoration.
type SaveState struct{ Span }

func (SaveState) isInstr() {}

// RestoreState restores a previously saved global/board state.
type RestoreState struct{ Span }

func (RestoreState) isInstr() {}

// --- type assertion -------------------------------------------------

// Type is a tree describing the shape a TypeCheck instruction asserts.
type Type interface{ isType() }

// AnyType matches any value.
type AnyType struct{}

func (AnyType) isType() {}

// IntegerType matches an arbitrary-precision integer.
type IntegerType struct{}

func (IntegerType) isType() {}

// StringType matches a string.
type StringType struct{}

func (StringType) isType() {}

// TupleType matches a tuple whose components match, in order, Elements.
type TupleType struct{ Elements []Type }

func (TupleType) isType() {}

// ListType matches a list whose elements all match Element.
type ListType struct{ Element Type }

func (ListType) isType() {}

// StructureType matches a value of TypeName; Cases, when non-empty, maps
// each acceptable constructor name to the expected type of each field.
type StructureType struct {
	TypeName string
	Cases    map[string]map[string]Type
}

func (StructureType) isType() {}

// TypeCheck asserts the runtime type of the (non-popped) top of stack.
type TypeCheck struct {
	Span
	Assert Type
}

func (TypeCheck) isInstr() {}
