package code

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Disassemble writes a human-readable rendering of c to w, one
// instruction per line, with labels and opcodes colorized via
// fatih/color.
func Disassemble(w io.Writer, c *Code) error {
	labelColor := color.New(color.FgYellow)
	opColor := color.New(color.FgCyan)
	for _, instr := range c.Instructions() {
		line, isLabel := render(instr)
		if isLabel {
			if _, err := labelColor.Fprintln(w, line); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprint(w, "    "); err != nil {
			return err
		}
		if _, err := opColor.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func render(instr Instr) (line string, isLabel bool) {
	switch i := instr.(type) {
	case Label:
		return i.Name + ":", true
	case PushInteger:
		return fmt.Sprintf("PushInteger %s", i.Value.String()), false
	case PushString:
		return fmt.Sprintf("PushString %q", i.Value), false
	case PushVariable:
		return fmt.Sprintf("PushVariable %s", i.Name), false
	case SetVariable:
		return fmt.Sprintf("SetVariable %s", i.Name), false
	case UnsetVariable:
		return fmt.Sprintf("UnsetVariable %s", i.Name), false
	case Jump:
		return fmt.Sprintf("Jump %s", i.Target), false
	case JumpIfFalse:
		return fmt.Sprintf("JumpIfFalse %s", i.Target), false
	case JumpIfStructure:
		return fmt.Sprintf("JumpIfStructure %s %s", i.Constructor, i.Target), false
	case JumpIfTuple:
		return fmt.Sprintf("JumpIfTuple %d %s", i.Size, i.Target), false
	case Call:
		return fmt.Sprintf("Call %s %d", i.Target, i.NArgs), false
	case Return:
		return "Return", false
	case MakeTuple:
		return fmt.Sprintf("MakeTuple %d", i.Size), false
	case MakeList:
		return fmt.Sprintf("MakeList %d", i.Size), false
	case MakeStructure:
		return fmt.Sprintf("MakeStructure %s %s [%s]", i.TypeName, i.Constructor, strings.Join(i.FieldNames, ", ")), false
	case UpdateStructure:
		return fmt.Sprintf("UpdateStructure %s %s [%s]", i.TypeName, i.Constructor, strings.Join(i.FieldNames, ", ")), false
	case ReadTupleComponent:
		return fmt.Sprintf("ReadTupleComponent %d", i.Index), false
	case ReadStructureField:
		return fmt.Sprintf("ReadStructureField %s", i.FieldName), false
	case Dup:
		return "Dup", false
	case Pop:
		return "Pop", false
	case Add:
		return "Add", false
	case PrimitiveCall:
		return fmt.Sprintf("PrimitiveCall %s %d", i.Name, i.NArgs), false
	case SaveState:
		return "SaveState", false
	case RestoreState:
		return "RestoreState", false
	case TypeCheck:
		return fmt.Sprintf("TypeCheck %s", renderType(i.Assert)), false
	default:
		return fmt.Sprintf("<unknown instruction %T>", instr), false
	}
}

func renderType(t Type) string {
	switch v := t.(type) {
	case AnyType:
		return "Any"
	case IntegerType:
		return "Integer"
	case StringType:
		return "String"
	case TupleType:
		parts := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			parts[i] = renderType(e)
		}
		return fmt.Sprintf("Tuple(%s)", strings.Join(parts, ", "))
	case ListType:
		return fmt.Sprintf("List(%s)", renderType(v.Element))
	case StructureType:
		return fmt.Sprintf("Structure(%s)", v.TypeName)
	default:
		return "?"
	}
}
