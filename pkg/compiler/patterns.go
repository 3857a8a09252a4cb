package compiler

import (
	"github.com/alanrodas/gobstones-compiler/pkg/ast"
	"github.com/alanrodas/gobstones-compiler/pkg/code"
)

// compilePatternCheck emits the non-popping check for p: falls through on
// mismatch, jumps to target on match.
func (c *Compiler) compilePatternCheck(p ast.Pattern, target string) error {
	switch pat := p.(type) {
	case ast.Wildcard:
		c.produce(pat.Start(), pat.End(), code.Jump{Target: target})
		return nil

	case ast.PatternStructure:
		typeName, ok := c.symtab.ConstructorType(pat.Constructor)
		if !ok {
			return errf(pat.StartPos, "undefined", "undefined constructor %q", pat.Constructor)
		}
		c.produce(pat.Start(), pat.End(), code.TypeCheck{
			Assert: code.StructureType{TypeName: typeName},
		})
		c.produce(pat.Start(), pat.End(), code.JumpIfStructure{Constructor: pat.Constructor, Target: target})
		return nil

	case ast.PatternTuple:
		k := len(pat.Parameters)
		elems := make([]code.Type, k)
		for i := range elems {
			elems[i] = code.AnyType{}
		}
		c.produce(pat.Start(), pat.End(), code.TypeCheck{Assert: code.TupleType{Elements: elems}})
		c.produce(pat.Start(), pat.End(), code.JumpIfTuple{Size: k, Target: target})
		return nil

	case ast.Timeout:
		c.produce(pat.Start(), pat.End(), code.JumpIfStructure{
			Constructor: c.messages.ConsTimeout(),
			Target:      target,
		})
		return nil

	default:
		return errf(p.Start(), "unimplemented", "pattern check not implemented: %T", p)
	}
}

// compilePatternBind emits the bindings for p with the subject still on
// top of stack, not popped.
func (c *Compiler) compilePatternBind(p ast.Pattern) error {
	switch pat := p.(type) {
	case ast.Wildcard, ast.Timeout:
		return nil

	case ast.PatternStructure:
		if len(pat.Parameters) == 0 {
			return nil
		}
		fields, ok := c.symtab.ConstructorFields(pat.Constructor)
		if !ok {
			return errf(pat.StartPos, "undefined", "undefined constructor %q", pat.Constructor)
		}
		for i, param := range pat.Parameters {
			c.produce(pat.Start(), pat.End(), code.ReadStructureField{FieldName: fields[i]})
			c.produce(pat.Start(), pat.End(), code.SetVariable{Name: param})
		}
		return nil

	case ast.PatternTuple:
		for i, param := range pat.Parameters {
			c.produce(pat.Start(), pat.End(), code.ReadTupleComponent{Index: i})
			c.produce(pat.Start(), pat.End(), code.SetVariable{Name: param})
		}
		return nil

	default:
		return errf(p.Start(), "unimplemented", "pattern bind not implemented: %T", p)
	}
}

// compilePatternUnbind emits UnsetVariable for every name compilePatternBind
// bound.
func (c *Compiler) compilePatternUnbind(p ast.Pattern) error {
	switch pat := p.(type) {
	case ast.Wildcard, ast.Timeout:
		return nil

	case ast.PatternStructure:
		for _, param := range pat.Parameters {
			c.produce(pat.Start(), pat.End(), code.UnsetVariable{Name: param})
		}
		return nil

	case ast.PatternTuple:
		for _, param := range pat.Parameters {
			c.produce(pat.Start(), pat.End(), code.UnsetVariable{Name: param})
		}
		return nil

	default:
		return errf(p.Start(), "unimplemented", "pattern unbind not implemented: %T", p)
	}
}
