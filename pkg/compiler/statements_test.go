package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanrodas/gobstones-compiler/pkg/ast"
	"github.com/alanrodas/gobstones-compiler/pkg/code"
)

// S3: if without else, Boolean variable condition.
func TestCompileIf_WithoutElse(t *testing.T) {
	c := newTestCompiler(nil, nil)
	n := &ast.If{
		Span:      sp(1, 1),
		Condition: variable("b"),
		Then: []ast.Statement{
			ast.AssignVariable{Span: sp(1, 1), Name: "x", Value: numLit(0)},
		},
	}

	require.NoError(t, c.compileIf(n))

	got := instrKinds(c.code.Instructions())
	assert.Equal(t, []string{
		"PushVariable", "TypeCheck", "JumpIfFalse",
		"PushInteger", "SetVariable",
		"Label",
	}, got)

	tc := c.code.Instructions()[1].(code.TypeCheck)
	st, ok := tc.Assert.(code.StructureType)
	require.True(t, ok)
	assert.Equal(t, "Bool", st.TypeName)

	jf := c.code.Instructions()[2].(code.JumpIfFalse)
	lbl := c.code.Instructions()[5].(code.Label)
	assert.Equal(t, lbl.Name, jf.Target)
}

func TestCompileIf_WithElse(t *testing.T) {
	c := newTestCompiler(nil, nil)
	n := &ast.If{
		Span:      sp(1, 1),
		Condition: variable("b"),
		Then:      []ast.Statement{ast.AssignVariable{Span: sp(1, 1), Name: "x", Value: numLit(1)}},
		Else:      []ast.Statement{ast.AssignVariable{Span: sp(1, 1), Name: "x", Value: numLit(2)}},
	}

	require.NoError(t, c.compileIf(n))
	got := instrKinds(c.code.Instructions())
	assert.Equal(t, []string{
		"PushVariable", "TypeCheck", "JumpIfFalse",
		"PushInteger", "SetVariable",
		"Jump", "Label",
		"PushInteger", "SetVariable",
		"Label",
	}, got)

	require.NoError(t, c.code.Validate())
}

// S4: while b { x := 0 }.
func TestCompileWhile(t *testing.T) {
	c := newTestCompiler(nil, nil)
	n := &ast.While{
		Span:      sp(1, 1),
		Condition: variable("b"),
		Body:      []ast.Statement{ast.AssignVariable{Span: sp(1, 1), Name: "x", Value: numLit(0)}},
	}

	require.NoError(t, c.compileWhile(n))

	got := instrKinds(c.code.Instructions())
	assert.Equal(t, []string{
		"Label", "PushVariable", "TypeCheck", "JumpIfFalse",
		"PushInteger", "SetVariable",
		"Jump", "Label",
	}, got)
	require.NoError(t, c.code.Validate())

	lStart := c.code.Instructions()[0].(code.Label).Name
	jumpBack := c.code.Instructions()[6].(code.Jump).Target
	assert.Equal(t, lStart, jumpBack)

	jf := c.code.Instructions()[3].(code.JumpIfFalse)
	lEnd := c.code.Instructions()[7].(code.Label).Name
	assert.Equal(t, lEnd, jf.Target)
}

// S5: repeat 3 { }.
func TestCompileRepeat_EmptyBody(t *testing.T) {
	c := newTestCompiler(nil, nil)
	n := &ast.Repeat{Span: sp(1, 1), Times: numLit(3), Body: nil}

	require.NoError(t, c.compileRepeat(n))

	got := instrKinds(c.code.Instructions())
	assert.Equal(t, []string{
		"PushInteger", "TypeCheck",
		"Label", "Dup", "PushInteger", "PrimitiveCall", "JumpIfFalse",
		"PushInteger", "PrimitiveCall", "Jump", "Label", "Pop",
	}, got)

	gt := c.code.Instructions()[5].(code.PrimitiveCall)
	assert.Equal(t, ">", gt.Name)
	assert.Equal(t, 2, gt.NArgs)

	minus := c.code.Instructions()[8].(code.PrimitiveCall)
	assert.Equal(t, "-", minus.Name)
	assert.Equal(t, 2, minus.NArgs)

	require.NoError(t, c.code.Validate())
}

// S7: foreach synthesises three variables and one label pair, all unset by
// the end, with the body sandwiched between the bounds check and the
// increment.
func TestCompileForeach(t *testing.T) {
	c := newTestCompiler(nil, nil)
	n := &ast.Foreach{
		Span:  sp(1, 1),
		Index: "i",
		Range: variable("xs"),
		Body:  []ast.Statement{ast.AssignVariable{Span: sp(1, 1), Name: "y", Value: variable("i")}},
	}

	require.NoError(t, c.compileForeach(n))
	require.NoError(t, c.code.Validate())

	instrs := c.code.Instructions()
	got := instrKinds(instrs)
	assert.Equal(t, []string{
		"PushVariable", "TypeCheck", "SetVariable",
		"PushVariable", "PrimitiveCall", "SetVariable",
		"PushInteger", "SetVariable",
		"Label",
		"PushVariable", "PushVariable", "PrimitiveCall", "JumpIfFalse",
		"PushVariable", "PushVariable", "PrimitiveCall", "SetVariable",
		"PushVariable", "SetVariable",
		"PushVariable", "PushInteger", "PrimitiveCall", "SetVariable",
		"Jump", "Label",
		"UnsetVariable", "UnsetVariable", "UnsetVariable", "UnsetVariable",
	}, got)

	// Fresh names: _v0 (_list), _v1 (_n), _v2 (_pos), in allocation order.
	setList := instrs[2].(code.SetVariable)
	assert.Equal(t, "_v0", setList.Name)
	setCount := instrs[5].(code.SetVariable)
	assert.Equal(t, "_v1", setCount.Name)
	setPos := instrs[7].(code.SetVariable)
	assert.Equal(t, "_v2", setPos.Name)

	unsets := []string{
		instrs[25].(code.UnsetVariable).Name,
		instrs[26].(code.UnsetVariable).Name,
		instrs[27].(code.UnsetVariable).Name,
		instrs[28].(code.UnsetVariable).Name,
	}
	assert.Equal(t, []string{"_v0", "_v1", "_v2", "i"}, unsets)

	// Labels: _l0 start, _l1 end -- unique and both referenced.
	lStart := instrs[8].(code.Label).Name
	lEnd := instrs[24].(code.Label).Name
	assert.NotEqual(t, lStart, lEnd)
}

func TestCompileForeach_IndexNameUsedAsIs(t *testing.T) {
	c := newTestCompiler(nil, nil)
	n := &ast.Foreach{Span: sp(1, 1), Index: "elem", Range: variable("xs"), Body: nil}
	require.NoError(t, c.compileForeach(n))

	found := false
	for _, instr := range c.code.Instructions() {
		if sv, ok := instr.(code.SetVariable); ok && sv.Name == "elem" {
			found = true
		}
	}
	assert.True(t, found, "expected a SetVariable binding the user index name")
}

// S6: switch with a single no-parameter Structure branch and empty body.
func TestCompileSwitch_SingleStructureBranchEmptyBody(t *testing.T) {
	st := symtabWithColor(t)
	c := newTestCompiler(st, nil)
	n := &ast.Switch{
		Span:    sp(1, 1),
		Subject: variable("c"),
		Branches: []ast.SwitchBranch{
			{Pattern: ast.PatternStructure{Span: sp(1, 1), Constructor: "Rojo"}, Body: nil},
		},
	}

	require.NoError(t, c.compileSwitch(n))
	require.NoError(t, c.code.Validate())

	got := instrKinds(c.code.Instructions())
	assert.Equal(t, []string{
		"PushVariable",
		"TypeCheck", "JumpIfStructure",
		"PushString", "PrimitiveCall",
		"Label", "Pop", "Jump",
		"Label",
	}, got)

	fail := c.code.Instructions()[3].(code.PushString)
	assert.Equal(t, "errmsg:switch-does-not-match", fail.Value)
	call := c.code.Instructions()[4].(code.PrimitiveCall)
	assert.Equal(t, "_FAIL", call.Name)
	assert.Equal(t, 1, call.NArgs)
}

func TestCompileSwitch_TriesPatternsInSourceOrderFirstMatchWins(t *testing.T) {
	st := symtabWithColor(t)
	c := newTestCompiler(st, nil)
	n := &ast.Switch{
		Span:    sp(1, 1),
		Subject: variable("c"),
		Branches: []ast.SwitchBranch{
			{Pattern: ast.PatternStructure{Span: sp(1, 1), Constructor: "Rojo"}, Body: nil},
			{Pattern: ast.Wildcard{Span: sp(1, 1)}, Body: nil},
		},
	}

	require.NoError(t, c.compileSwitch(n))
	require.NoError(t, c.code.Validate())

	instrs := c.code.Instructions()
	// The checks for both branches are emitted before the failure
	// sequence, in source order: Rojo's TypeCheck+JumpIfStructure, then
	// the wildcard's unconditional Jump.
	checkKinds := instrKinds(instrs[1:4])
	assert.Equal(t, []string{"TypeCheck", "JumpIfStructure", "Jump"}, checkKinds)
}

func TestCompileAssignTuple(t *testing.T) {
	c := newTestCompiler(nil, nil)
	a := &ast.AssignTuple{Span: sp(1, 1), Names: []string{"a", "b"}, Value: ast.Tuple{
		Span:     sp(1, 1),
		Elements: []ast.Expr{numLit(1), numLit(2)},
	}}

	require.NoError(t, c.compileAssignTuple(a))

	got := instrKinds(c.code.Instructions())
	assert.Equal(t, []string{
		"PushInteger", "PushInteger", "MakeTuple",
		"TypeCheck",
		"ReadTupleComponent", "SetVariable",
		"ReadTupleComponent", "SetVariable",
		"Pop",
	}, got)

	tc := c.code.Instructions()[3].(code.TypeCheck)
	tup, ok := tc.Assert.(code.TupleType)
	require.True(t, ok)
	assert.Len(t, tup.Elements, 2)
}

func TestCompileProcedureCall_Primitive(t *testing.T) {
	c := newTestCompiler(nil, nil)
	p := &ast.ProcedureCall{Span: sp(1, 1), Name: "Poner", Args: []ast.Expr{variable("Verde")}}

	require.NoError(t, c.compileProcedureCall(p))
	got := instrKinds(c.code.Instructions())
	assert.Equal(t, []string{"PushVariable", "PrimitiveCall"}, got)

	call := c.code.Instructions()[1].(code.PrimitiveCall)
	assert.Equal(t, "Poner", call.Name)
	assert.Equal(t, 1, call.NArgs)
}

func TestCompileProcedureCall_UserDefinedIsUnimplemented(t *testing.T) {
	st := newTestTable()
	st.DefineProcedure("MiProcedimiento")
	c := newTestCompiler(st, nil)
	p := &ast.ProcedureCall{Span: sp(1, 1), Name: "MiProcedimiento"}

	err := c.compileProcedureCall(p)
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "unimplemented", cerr.ErrorType)
}

func TestCompileProcedureCall_Undefined(t *testing.T) {
	c := newTestCompiler(nil, nil)
	p := &ast.ProcedureCall{Span: sp(1, 1), Name: "Ghost"}

	err := c.compileProcedureCall(p)
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "undefined", cerr.ErrorType)
}

func TestCompileProcedureCall_NameRegisteredOnlyAsFunctionIsStillUndefinedProcedure(t *testing.T) {
	// A name can be registered as a function without being a procedure;
	// dispatch in statement position must consult IsProcedure, not
	// IsFunction (the documented fix for the original dispatch's typo).
	st := newTestTable()
	st.DefineFunction("dobleOEsFuncion")
	c := newTestCompiler(st, nil)
	p := &ast.ProcedureCall{Span: sp(1, 1), Name: "dobleOEsFuncion"}

	err := c.compileProcedureCall(p)
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "undefined", cerr.ErrorType)
}

func TestCompileReturn_LeavesNetOnePositive(t *testing.T) {
	c := newTestCompiler(nil, nil)
	err := c.compileStatement(ast.Return{Span: sp(1, 1), Value: numLit(7)})
	require.NoError(t, err)
	assert.Equal(t, []string{"PushInteger", "Return"}, instrKinds(c.code.Instructions()))
}

func TestCompileBlock_FlattensNestedStatements(t *testing.T) {
	c := newTestCompiler(nil, nil)
	block := ast.Block{Span: sp(1, 1), Body: []ast.Statement{
		ast.AssignVariable{Span: sp(1, 1), Name: "a", Value: numLit(1)},
		ast.AssignVariable{Span: sp(1, 1), Name: "b", Value: numLit(2)},
	}}
	require.NoError(t, c.compileStatement(block))
	assert.Equal(t, []string{"PushInteger", "SetVariable", "PushInteger", "SetVariable"}, instrKinds(c.code.Instructions()))
}

func TestCompileStatement_UnknownKindIsProgrammerError(t *testing.T) {
	c := newTestCompiler(nil, nil)
	err := c.compileStatement(unknownStatement{ast.Block{Span: sp(1, 1)}})
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "unimplemented", cerr.ErrorType)
}

// unknownStatement is a Statement variant the compiler has no case for,
// used to exercise the exhaustiveness fallback. It embeds ast.Statement
// because the interface's marker method is unexported and cannot be
// declared outside package ast; its dynamic type matches no case.
type unknownStatement struct{ ast.Statement }
