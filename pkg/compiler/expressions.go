package compiler

import (
	"github.com/alanrodas/gobstones-compiler/pkg/ast"
	"github.com/alanrodas/gobstones-compiler/pkg/code"
)

// compileExpr lowers e, leaving exactly one value on the stack: every
// expression nets +1.
func (c *Compiler) compileExpr(e ast.Expr) error {
	switch expr := e.(type) {
	case ast.Variable:
		c.produce(expr.Start(), expr.End(), code.PushVariable{Name: expr.Name})
		return nil

	case ast.ConstantNumber:
		c.produce(expr.Start(), expr.End(), code.PushInteger{Value: expr.Value})
		return nil

	case ast.ConstantString:
		c.produce(expr.Start(), expr.End(), code.PushString{Value: expr.Value})
		return nil

	case ast.List:
		for _, el := range expr.Elements {
			if err := c.compileExpr(el); err != nil {
				return err
			}
		}
		c.produce(expr.Start(), expr.End(), code.MakeList{Size: len(expr.Elements)})
		return nil

	case ast.Tuple:
		for _, el := range expr.Elements {
			if err := c.compileExpr(el); err != nil {
				return err
			}
		}
		c.produce(expr.Start(), expr.End(), code.MakeTuple{Size: len(expr.Elements)})
		return nil

	case ast.Structure:
		fieldNames := make([]string, len(expr.Fields))
		for i, f := range expr.Fields {
			if err := c.compileExpr(f.Value); err != nil {
				return err
			}
			fieldNames[i] = f.Name
		}
		typeName, ok := c.symtab.ConstructorType(expr.Constructor)
		if !ok {
			return errf(expr.StartPos, "undefined", "undefined constructor %q", expr.Constructor)
		}
		c.produce(expr.Start(), expr.End(), code.MakeStructure{
			TypeName:    typeName,
			Constructor: expr.Constructor,
			FieldNames:  fieldNames,
		})
		return nil

	case ast.FunctionCall:
		return c.compileFunctionCall(&expr)

	case ast.Range:
		return errf(expr.StartPos, "unimplemented", "range expressions are not implemented")

	case ast.StructureUpdate:
		return errf(expr.StartPos, "unimplemented", "structure-update expressions are not implemented")

	default:
		return errf(e.Start(), "unimplemented", "expression not implemented: %T", e)
	}
}

// compileFunctionCall dispatches a named call to one of three namespaces:
// primitive function, user function, or field accessor. `&&`/`||`
// short-circuiting is a reserved extension point.
func (c *Compiler) compileFunctionCall(f *ast.FunctionCall) error {
	if f.Name == "&&" || f.Name == "||" {
		return errf(f.StartPos, "unimplemented", "short-circuited %q is not implemented", f.Name)
	}

	for _, arg := range f.Args {
		if err := c.compileExpr(arg); err != nil {
			return err
		}
	}

	switch {
	case c.primitives.IsFunction(f.Name):
		c.produce(f.Start(), f.End(), code.PrimitiveCall{Name: f.Name, NArgs: len(f.Args)})
		return nil
	case c.symtab.IsFunction(f.Name):
		return errf(f.StartPos, "unimplemented", "user function %q lowering is not implemented", f.Name)
	case c.symtab.IsField(f.Name):
		return errf(f.StartPos, "unimplemented", "field accessor %q lowering is not implemented", f.Name)
	default:
		return errf(f.StartPos, "undefined", "undefined function %q", f.Name)
	}
}
