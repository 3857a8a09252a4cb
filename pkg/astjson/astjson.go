// Package astjson is the wire format the CLI and diagnostics service use
// to read an AST from disk. This module takes a linted AST as input and
// has no parser of its own, so callers that don't embed their own parser
// hand the compiler a JSON document in this format instead.
package astjson

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/alanrodas/gobstones-compiler/pkg/ast"
)

// node is the tagged envelope every AST/statement/pattern/expression node
// is encoded as: a "kind" discriminator plus kind-specific fields.
type node struct {
	Kind string `json:"kind"`

	Line      int `json:"line,omitempty"`
	Column    int `json:"column,omitempty"`
	EndLine   int `json:"endLine,omitempty"`
	EndColumn int `json:"endColumn,omitempty"`

	Name        string   `json:"name,omitempty"`
	Value       string   `json:"value,omitempty"`
	Constructor string   `json:"constructor,omitempty"`
	Names       []string `json:"names,omitempty"`
	Parameters  []string `json:"parameters,omitempty"`
	Index       string   `json:"index,omitempty"`

	Body        []json.RawMessage `json:"body,omitempty"`
	Then        []json.RawMessage `json:"then,omitempty"`
	Else        []json.RawMessage `json:"else,omitempty"`
	Args        []json.RawMessage `json:"args,omitempty"`
	Elements    []json.RawMessage `json:"elements,omitempty"`
	Fields      []fieldJSON       `json:"fields,omitempty"`
	Branches    []branchJSON      `json:"branches,omitempty"`
	Condition   json.RawMessage   `json:"condition,omitempty"`
	Times       json.RawMessage   `json:"times,omitempty"`
	Range       json.RawMessage   `json:"range,omitempty"`
	Subject     json.RawMessage   `json:"subject,omitempty"`
	ReturnVal   json.RawMessage   `json:"returnValue,omitempty"`
	Pattern     json.RawMessage   `json:"pattern,omitempty"`
	AssignValue json.RawMessage   `json:"assignValue,omitempty"`
	From        json.RawMessage   `json:"from,omitempty"`
	To          json.RawMessage   `json:"to,omitempty"`
}

type fieldJSON struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type branchJSON struct {
	Pattern json.RawMessage   `json:"pattern"`
	Body    []json.RawMessage `json:"body"`
}

func pos(n node) ast.Span {
	return ast.Span{
		StartPos: ast.Pos{Line: n.Line, Column: n.Column},
		EndPos:   ast.Pos{Line: n.EndLine, Column: n.EndColumn},
	}
}

// Unmarshal decodes a JSON document into an *ast.AST.
func Unmarshal(data []byte) (*ast.AST, error) {
	var n node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("astjson: decoding root: %w", err)
	}
	if n.Kind != "AST" {
		return nil, fmt.Errorf("astjson: expected root kind %q, got %q", "AST", n.Kind)
	}
	defs := make([]ast.Definition, 0, len(n.Body))
	for _, raw := range n.Body {
		def, err := decodeDefinition(raw)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return &ast.AST{Span: pos(n), Definitions: defs}, nil
}

func decodeDefinition(raw json.RawMessage) (ast.Definition, error) {
	var n node
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("astjson: decoding definition: %w", err)
	}
	switch n.Kind {
	case "Program":
		body, err := decodeStatements(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.Program{Span: pos(n), Body: body}, nil
	case "InteractiveProgram":
		body, err := decodeStatements(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.InteractiveProgram{Span: pos(n), Body: body}, nil
	case "Procedure":
		body, err := decodeStatements(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.Procedure{Span: pos(n), Name: n.Name, Parameters: n.Parameters, Body: body}, nil
	case "Function":
		body, err := decodeStatements(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.Function{Span: pos(n), Name: n.Name, Parameters: n.Parameters, Body: body}, nil
	default:
		return nil, fmt.Errorf("astjson: unknown definition kind %q", n.Kind)
	}
}

func decodeStatements(raws []json.RawMessage) ([]ast.Statement, error) {
	out := make([]ast.Statement, 0, len(raws))
	for _, raw := range raws {
		s, err := decodeStatement(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeStatement(raw json.RawMessage) (ast.Statement, error) {
	var n node
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("astjson: decoding statement: %w", err)
	}

	switch n.Kind {
	case "Block":
		body, err := decodeStatements(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.Block{Span: pos(n), Body: body}, nil

	case "Return":
		val, err := decodeExprOrNil(n.ReturnVal)
		if err != nil {
			return nil, err
		}
		return ast.Return{Span: pos(n), Value: val}, nil

	case "If":
		cond, err := decodeExpr(n.Condition)
		if err != nil {
			return nil, err
		}
		then, err := decodeStatements(n.Then)
		if err != nil {
			return nil, err
		}
		var els []ast.Statement
		if n.Else != nil {
			els, err = decodeStatements(n.Else)
			if err != nil {
				return nil, err
			}
		}
		return ast.If{Span: pos(n), Condition: cond, Then: then, Else: els}, nil

	case "Repeat":
		times, err := decodeExpr(n.Times)
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.Repeat{Span: pos(n), Times: times, Body: body}, nil

	case "Foreach":
		rng, err := decodeExpr(n.Range)
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.Foreach{Span: pos(n), Index: n.Index, Range: rng, Body: body}, nil

	case "While":
		cond, err := decodeExpr(n.Condition)
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(n.Body)
		if err != nil {
			return nil, err
		}
		return ast.While{Span: pos(n), Condition: cond, Body: body}, nil

	case "Switch":
		subj, err := decodeExpr(n.Subject)
		if err != nil {
			return nil, err
		}
		branches := make([]ast.SwitchBranch, 0, len(n.Branches))
		for _, b := range n.Branches {
			pat, err := decodePattern(b.Pattern)
			if err != nil {
				return nil, err
			}
			body, err := decodeStatements(b.Body)
			if err != nil {
				return nil, err
			}
			branches = append(branches, ast.SwitchBranch{Pattern: pat, Body: body})
		}
		return ast.Switch{Span: pos(n), Subject: subj, Branches: branches}, nil

	case "AssignVariable":
		val, err := decodeExpr(n.AssignValue)
		if err != nil {
			return nil, err
		}
		return ast.AssignVariable{Span: pos(n), Name: n.Name, Value: val}, nil

	case "AssignTuple":
		val, err := decodeExpr(n.AssignValue)
		if err != nil {
			return nil, err
		}
		return ast.AssignTuple{Span: pos(n), Names: n.Names, Value: val}, nil

	case "ProcedureCall":
		args, err := decodeExprs(n.Args)
		if err != nil {
			return nil, err
		}
		return ast.ProcedureCall{Span: pos(n), Name: n.Name, Args: args}, nil

	default:
		return nil, fmt.Errorf("astjson: unknown statement kind %q", n.Kind)
	}
}

func decodePattern(raw json.RawMessage) (ast.Pattern, error) {
	var n node
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("astjson: decoding pattern: %w", err)
	}
	switch n.Kind {
	case "Wildcard":
		return ast.Wildcard{Span: pos(n)}, nil
	case "PatternStructure":
		return ast.PatternStructure{Span: pos(n), Constructor: n.Constructor, Parameters: n.Parameters}, nil
	case "PatternTuple":
		return ast.PatternTuple{Span: pos(n), Parameters: n.Parameters}, nil
	case "Timeout":
		return ast.Timeout{Span: pos(n)}, nil
	default:
		return nil, fmt.Errorf("astjson: unknown pattern kind %q", n.Kind)
	}
}

func decodeExprOrNil(raw json.RawMessage) (ast.Expr, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	return decodeExpr(raw)
}

func decodeExprs(raws []json.RawMessage) ([]ast.Expr, error) {
	out := make([]ast.Expr, 0, len(raws))
	for _, raw := range raws {
		e, err := decodeExpr(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeExpr(raw json.RawMessage) (ast.Expr, error) {
	var n node
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("astjson: decoding expression: %w", err)
	}

	switch n.Kind {
	case "Variable":
		return ast.Variable{Span: pos(n), Name: n.Name}, nil

	case "ConstantNumber":
		v, ok := new(big.Int).SetString(n.Value, 10)
		if !ok {
			return nil, fmt.Errorf("astjson: invalid integer literal %q", n.Value)
		}
		return ast.ConstantNumber{Span: pos(n), Value: v}, nil

	case "ConstantString":
		return ast.ConstantString{Span: pos(n), Value: n.Value}, nil

	case "List":
		elems, err := decodeExprs(n.Elements)
		if err != nil {
			return nil, err
		}
		return ast.List{Span: pos(n), Elements: elems}, nil

	case "Range":
		from, err := decodeExpr(n.From)
		if err != nil {
			return nil, err
		}
		to, err := decodeExpr(n.To)
		if err != nil {
			return nil, err
		}
		return ast.Range{Span: pos(n), From: from, To: to}, nil

	case "Tuple":
		elems, err := decodeExprs(n.Elements)
		if err != nil {
			return nil, err
		}
		return ast.Tuple{Span: pos(n), Elements: elems}, nil

	case "Structure":
		fields, err := decodeFields(n.Fields)
		if err != nil {
			return nil, err
		}
		return ast.Structure{Span: pos(n), Constructor: n.Constructor, Fields: fields}, nil

	case "StructureUpdate":
		subj, err := decodeExpr(n.Subject)
		if err != nil {
			return nil, err
		}
		fields, err := decodeFields(n.Fields)
		if err != nil {
			return nil, err
		}
		return ast.StructureUpdate{Span: pos(n), Subject: subj, Fields: fields}, nil

	case "FunctionCall":
		args, err := decodeExprs(n.Args)
		if err != nil {
			return nil, err
		}
		return ast.FunctionCall{Span: pos(n), Name: n.Name, Args: args}, nil

	default:
		return nil, fmt.Errorf("astjson: unknown expression kind %q", n.Kind)
	}
}

func decodeFields(raws []fieldJSON) ([]ast.StructureField, error) {
	out := make([]ast.StructureField, 0, len(raws))
	for _, f := range raws {
		v, err := decodeExpr(f.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, ast.StructureField{Name: f.Name, Value: v})
	}
	return out, nil
}
