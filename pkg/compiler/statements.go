package compiler

import (
	"math/big"

	"github.com/alanrodas/gobstones-compiler/pkg/ast"
	"github.com/alanrodas/gobstones-compiler/pkg/code"
)

// compileStatement lowers s with net stack effect 0, except Return, which
// leaves exactly 1.
func (c *Compiler) compileStatement(s ast.Statement) error {
	switch stmt := s.(type) {
	case ast.Block:
		for _, inner := range stmt.Body {
			if err := c.compileStatement(inner); err != nil {
				return err
			}
		}
		return nil

	case ast.Return:
		if err := c.compileExpr(stmt.Value); err != nil {
			return err
		}
		c.produce(stmt.Start(), stmt.End(), code.Return{})
		return nil

	case ast.AssignVariable:
		if err := c.compileExpr(stmt.Value); err != nil {
			return err
		}
		c.produce(stmt.Start(), stmt.End(), code.SetVariable{Name: stmt.Name})
		return nil

	case ast.AssignTuple:
		return c.compileAssignTuple(&stmt)

	case ast.ProcedureCall:
		return c.compileProcedureCall(&stmt)

	case ast.If:
		return c.compileIf(&stmt)

	case ast.While:
		return c.compileWhile(&stmt)

	case ast.Repeat:
		return c.compileRepeat(&stmt)

	case ast.Foreach:
		return c.compileForeach(&stmt)

	case ast.Switch:
		return c.compileSwitch(&stmt)

	default:
		return errf(s.Start(), "unimplemented", "Statement not implemented: %T", s)
	}
}

func (c *Compiler) compileStatements(body []ast.Statement) error {
	for _, s := range body {
		if err := c.compileStatement(s); err != nil {
			return err
		}
	}
	return nil
}

// compileAssignTuple lowers `(x0,...,xk-1) := value`.
func (c *Compiler) compileAssignTuple(a *ast.AssignTuple) error {
	if err := c.compileExpr(a.Value); err != nil {
		return err
	}
	k := len(a.Names)
	elems := make([]code.Type, k)
	for i := range elems {
		elems[i] = code.AnyType{}
	}
	c.produce(a.Start(), a.End(), code.TypeCheck{Assert: code.TupleType{Elements: elems}})
	for i, name := range a.Names {
		c.produce(a.Start(), a.End(), code.ReadTupleComponent{Index: i})
		c.produce(a.Start(), a.End(), code.SetVariable{Name: name})
	}
	c.produce(a.Start(), a.End(), code.Pop{})
	return nil
}

// compileProcedureCall dispatches a named procedure call to one of two
// namespaces: primitive or user-defined. Dispatch checks IsProcedure on
// the symbol table, not IsFunction, since a name can be both a function
// and a procedure in different call positions.
func (c *Compiler) compileProcedureCall(p *ast.ProcedureCall) error {
	for _, arg := range p.Args {
		if err := c.compileExpr(arg); err != nil {
			return err
		}
	}

	switch {
	case c.primitives.IsProcedure(p.Name):
		c.produce(p.Start(), p.End(), code.PrimitiveCall{Name: p.Name, NArgs: len(p.Args)})
		return nil
	case c.symtab.IsProcedure(p.Name):
		return errf(p.StartPos, "unimplemented", "user procedure %q lowering is not implemented", p.Name)
	default:
		return errf(p.StartPos, "undefined", "undefined procedure %q", p.Name)
	}
}

func (c *Compiler) typeCheckBool(pos ast.Pos, end ast.Pos) {
	c.produce(pos, end, code.TypeCheck{Assert: code.StructureType{TypeName: c.messages.TypeBool()}})
}

// compileIf lowers both the with-else and without-else forms.
func (c *Compiler) compileIf(n *ast.If) error {
	if err := c.compileExpr(n.Condition); err != nil {
		return err
	}
	c.typeCheckBool(n.Start(), n.End())

	lElse := c.names.FreshLabel()
	c.produce(n.Start(), n.End(), code.JumpIfFalse{Target: lElse})

	if err := c.compileStatements(n.Then); err != nil {
		return err
	}

	if n.Else == nil {
		c.produce(n.Start(), n.End(), code.Label{Name: lElse})
		return nil
	}

	lEnd := c.names.FreshLabel()
	c.produce(n.Start(), n.End(), code.Jump{Target: lEnd})
	c.produce(n.Start(), n.End(), code.Label{Name: lElse})
	if err := c.compileStatements(n.Else); err != nil {
		return err
	}
	c.produce(n.Start(), n.End(), code.Label{Name: lEnd})
	return nil
}

// compileWhile lowers unbounded iteration.
func (c *Compiler) compileWhile(n *ast.While) error {
	lStart := c.names.FreshLabel()
	lEnd := c.names.FreshLabel()

	c.produce(n.Start(), n.End(), code.Label{Name: lStart})
	if err := c.compileExpr(n.Condition); err != nil {
		return err
	}
	c.typeCheckBool(n.Start(), n.End())
	c.produce(n.Start(), n.End(), code.JumpIfFalse{Target: lEnd})
	if err := c.compileStatements(n.Body); err != nil {
		return err
	}
	c.produce(n.Start(), n.End(), code.Jump{Target: lStart})
	c.produce(n.Start(), n.End(), code.Label{Name: lEnd})
	return nil
}

// compileRepeat lowers bounded iteration where the counter lives on the
// stack.
func (c *Compiler) compileRepeat(n *ast.Repeat) error {
	if err := c.compileExpr(n.Times); err != nil {
		return err
	}
	c.produce(n.Start(), n.End(), code.TypeCheck{Assert: code.IntegerType{}})

	lStart := c.names.FreshLabel()
	lEnd := c.names.FreshLabel()

	c.produce(n.Start(), n.End(), code.Label{Name: lStart})
	c.produce(n.Start(), n.End(), code.Dup{})
	c.produce(n.Start(), n.End(), code.PushInteger{Value: big.NewInt(0)})
	c.produce(n.Start(), n.End(), code.PrimitiveCall{Name: ">", NArgs: 2})
	c.produce(n.Start(), n.End(), code.JumpIfFalse{Target: lEnd})

	if err := c.compileStatements(n.Body); err != nil {
		return err
	}

	c.produce(n.Start(), n.End(), code.PushInteger{Value: big.NewInt(1)})
	c.produce(n.Start(), n.End(), code.PrimitiveCall{Name: "-", NArgs: 2})
	c.produce(n.Start(), n.End(), code.Jump{Target: lStart})
	c.produce(n.Start(), n.End(), code.Label{Name: lEnd})
	c.produce(n.Start(), n.End(), code.Pop{})
	return nil
}

// compileForeach lowers list iteration using three fresh synthetic
// variables plus the user's own index name.
func (c *Compiler) compileForeach(n *ast.Foreach) error {
	if err := c.compileExpr(n.Range); err != nil {
		return err
	}
	c.produce(n.Start(), n.End(), code.TypeCheck{Assert: code.ListType{Element: code.AnyType{}}})

	list := c.names.FreshVariable()
	count := c.names.FreshVariable()
	pos := c.names.FreshVariable()

	c.produce(n.Start(), n.End(), code.SetVariable{Name: list})

	c.produce(n.Start(), n.End(), code.PushVariable{Name: list})
	c.produce(n.Start(), n.End(), code.PrimitiveCall{Name: "_unsafeListLength", NArgs: 1})
	c.produce(n.Start(), n.End(), code.SetVariable{Name: count})

	c.produce(n.Start(), n.End(), code.PushInteger{Value: big.NewInt(0)})
	c.produce(n.Start(), n.End(), code.SetVariable{Name: pos})

	lStart := c.names.FreshLabel()
	lEnd := c.names.FreshLabel()

	c.produce(n.Start(), n.End(), code.Label{Name: lStart})
	c.produce(n.Start(), n.End(), code.PushVariable{Name: pos})
	c.produce(n.Start(), n.End(), code.PushVariable{Name: count})
	c.produce(n.Start(), n.End(), code.PrimitiveCall{Name: "<", NArgs: 2})
	c.produce(n.Start(), n.End(), code.JumpIfFalse{Target: lEnd})

	c.produce(n.Start(), n.End(), code.PushVariable{Name: list})
	c.produce(n.Start(), n.End(), code.PushVariable{Name: pos})
	c.produce(n.Start(), n.End(), code.PrimitiveCall{Name: "_unsafeListNth", NArgs: 2})
	c.produce(n.Start(), n.End(), code.SetVariable{Name: n.Index})

	if err := c.compileStatements(n.Body); err != nil {
		return err
	}

	c.produce(n.Start(), n.End(), code.PushVariable{Name: pos})
	c.produce(n.Start(), n.End(), code.PushInteger{Value: big.NewInt(1)})
	c.produce(n.Start(), n.End(), code.PrimitiveCall{Name: "+", NArgs: 2})
	c.produce(n.Start(), n.End(), code.SetVariable{Name: pos})
	c.produce(n.Start(), n.End(), code.Jump{Target: lStart})
	c.produce(n.Start(), n.End(), code.Label{Name: lEnd})

	c.produce(n.Start(), n.End(), code.UnsetVariable{Name: list})
	c.produce(n.Start(), n.End(), code.UnsetVariable{Name: count})
	c.produce(n.Start(), n.End(), code.UnsetVariable{Name: pos})
	c.produce(n.Start(), n.End(), code.UnsetVariable{Name: n.Index})
	return nil
}

// compileSwitch lowers pattern-matching dispatch. Patterns are tried in
// source order; the fall-through failure is unconditional after all
// checks, so a wildcard branch masks it only because its check is an
// unconditional jump emitted before the failure sequence.
func (c *Compiler) compileSwitch(n *ast.Switch) error {
	if err := c.compileExpr(n.Subject); err != nil {
		return err
	}

	labels := make([]string, len(n.Branches))
	for i := range n.Branches {
		labels[i] = c.names.FreshLabel()
	}

	for i, branch := range n.Branches {
		if err := c.compilePatternCheck(branch.Pattern, labels[i]); err != nil {
			return err
		}
	}

	c.produce(n.Start(), n.End(), code.PushString{Value: c.messages.ErrSwitchDoesNotMatch()})
	c.produce(n.Start(), n.End(), code.PrimitiveCall{Name: "_FAIL", NArgs: 1})

	lEnd := c.names.FreshLabel()

	for i, branch := range n.Branches {
		c.produce(n.Start(), n.End(), code.Label{Name: labels[i]})
		if err := c.compilePatternBind(branch.Pattern); err != nil {
			return err
		}
		c.produce(n.Start(), n.End(), code.Pop{})
		if err := c.compileStatements(branch.Body); err != nil {
			return err
		}
		if err := c.compilePatternUnbind(branch.Pattern); err != nil {
			return err
		}
		c.produce(n.Start(), n.End(), code.Jump{Target: lEnd})
	}

	c.produce(n.Start(), n.End(), code.Label{Name: lEnd})
	return nil
}
