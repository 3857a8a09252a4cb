package code

import "github.com/alanrodas/gobstones-compiler/pkg/ast"

// withPos returns instr with its Span set to [start, end]. Lowerings build
// instructions without positions and let the Compiler's single emission
// chokepoint stamp them, so every call site can't forget to: every
// instruction must leave both positions set.
func withPos(instr Instr, start, end ast.Pos) Instr {
	s := Span{StartPos: start, EndPos: end}
	switch i := instr.(type) {
	case PushInteger:
		i.Span = s
		return i
	case PushString:
		i.Span = s
		return i
	case PushVariable:
		i.Span = s
		return i
	case SetVariable:
		i.Span = s
		return i
	case UnsetVariable:
		i.Span = s
		return i
	case Label:
		i.Span = s
		return i
	case Jump:
		i.Span = s
		return i
	case JumpIfFalse:
		i.Span = s
		return i
	case JumpIfStructure:
		i.Span = s
		return i
	case JumpIfTuple:
		i.Span = s
		return i
	case Call:
		i.Span = s
		return i
	case Return:
		i.Span = s
		return i
	case MakeTuple:
		i.Span = s
		return i
	case MakeList:
		i.Span = s
		return i
	case MakeStructure:
		i.Span = s
		return i
	case UpdateStructure:
		i.Span = s
		return i
	case ReadTupleComponent:
		i.Span = s
		return i
	case ReadStructureField:
		i.Span = s
		return i
	case Dup:
		i.Span = s
		return i
	case Pop:
		i.Span = s
		return i
	case Add:
		i.Span = s
		return i
	case PrimitiveCall:
		i.Span = s
		return i
	case SaveState:
		i.Span = s
		return i
	case RestoreState:
		i.Span = s
		return i
	case TypeCheck:
		i.Span = s
		return i
	default:
		return instr
	}
}

// WithPos is the exported form of withPos, used by the Compiler's
// emission chokepoint and by callers outside this package that build
// instructions by hand (e.g. tests constructing expected Code values).
func WithPos(instr Instr, start, end ast.Pos) Instr { return withPos(instr, start, end) }
