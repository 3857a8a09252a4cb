package compiler

import (
	"math/big"
	"testing"

	"github.com/alanrodas/gobstones-compiler/pkg/ast"
	"github.com/alanrodas/gobstones-compiler/pkg/code"
	"github.com/alanrodas/gobstones-compiler/pkg/messages"
	"github.com/alanrodas/gobstones-compiler/pkg/primitives"
	"github.com/alanrodas/gobstones-compiler/pkg/symtab"
)

// sp builds a one-column Span starting at line:col, which is all these
// tests need since positions are only checked for presence, not content.
func sp(line, col int) ast.Span {
	return ast.Span{StartPos: ast.Pos{Line: line, Column: col}, EndPos: ast.Pos{Line: line, Column: col + 1}}
}

func numLit(n int64) ast.ConstantNumber {
	return ast.ConstantNumber{Span: sp(1, 1), Value: big.NewInt(n)}
}

func variable(name string) ast.Variable {
	return ast.Variable{Span: sp(1, 1), Name: name}
}

func newTestCompiler(st symtab.SymbolTable, prim primitives.Catalog) *Compiler {
	if st == nil {
		st = symtab.NewTable()
	}
	if prim == nil {
		prim = primitives.Default()
	}
	return New(st, prim, messages.Default())
}

func primDefault() primitives.Catalog { return primitives.Default() }
func msgDefault() messages.Catalog    { return messages.Default() }

func newTestTable() *symtab.Table { return symtab.NewTable() }

// symtabWithColor returns a Table registering a "Color" type with a
// zero-field "Rojo" constructor, the fixture used by the switch/pattern
// tests mirroring scenario S6.
func symtabWithColor(t testing.TB) *symtab.Table {
	t.Helper()
	tab := symtab.NewTable()
	tab.DefineConstructor("Color", "Rojo", nil)
	return tab
}

// instrKinds returns the concrete Go type name of each instruction, useful
// for asserting the shape of a lowering without comparing full structs.
func instrKinds(instrs []code.Instr) []string {
	kinds := make([]string, len(instrs))
	for i, instr := range instrs {
		kinds[i] = kindOf(instr)
	}
	return kinds
}

func kindOf(instr code.Instr) string {
	switch instr.(type) {
	case code.PushInteger:
		return "PushInteger"
	case code.PushString:
		return "PushString"
	case code.PushVariable:
		return "PushVariable"
	case code.SetVariable:
		return "SetVariable"
	case code.UnsetVariable:
		return "UnsetVariable"
	case code.Label:
		return "Label"
	case code.Jump:
		return "Jump"
	case code.JumpIfFalse:
		return "JumpIfFalse"
	case code.JumpIfStructure:
		return "JumpIfStructure"
	case code.JumpIfTuple:
		return "JumpIfTuple"
	case code.Call:
		return "Call"
	case code.Return:
		return "Return"
	case code.MakeTuple:
		return "MakeTuple"
	case code.MakeList:
		return "MakeList"
	case code.MakeStructure:
		return "MakeStructure"
	case code.UpdateStructure:
		return "UpdateStructure"
	case code.ReadTupleComponent:
		return "ReadTupleComponent"
	case code.ReadStructureField:
		return "ReadStructureField"
	case code.Dup:
		return "Dup"
	case code.Pop:
		return "Pop"
	case code.Add:
		return "Add"
	case code.PrimitiveCall:
		return "PrimitiveCall"
	case code.SaveState:
		return "SaveState"
	case code.RestoreState:
		return "RestoreState"
	case code.TypeCheck:
		return "TypeCheck"
	default:
		return "?"
	}
}
