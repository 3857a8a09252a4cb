// Package symtab describes the read-only symbol table the compiler
// queries during lowering. The real catalog is populated by the parser
// and linter; this package defines the contract the compiler depends on,
// plus an in-memory implementation for tests and small programs and a
// SQLite-backed one (SQLiteCatalog).
package symtab

import "fmt"

// SymbolTable is the subset of the linter's symbol table the compiler
// needs. It is queried read-only; no locking is required by callers
// since compilation is single-threaded.
type SymbolTable interface {
	// ConstructorType returns the name of the type that owns the given
	// constructor.
	ConstructorType(constructor string) (string, bool)

	// ConstructorFields returns the ordered field names of the given
	// constructor. The order is authoritative for pattern-bind and
	// structure construction.
	ConstructorFields(constructor string) ([]string, bool)

	// IsFunction reports whether name denotes a user-defined function.
	IsFunction(name string) bool

	// IsField reports whether name denotes a record field accessor.
	IsField(name string) bool

	// IsProcedure reports whether name denotes a user-defined procedure.
	IsProcedure(name string) bool
}

// Constructor describes one constructor of a user type for the purposes
// of building a Table.
type Constructor struct {
	Type   string
	Fields []string
}

// Table is a simple in-memory SymbolTable backed by maps. It is the
// reference implementation used by the compiler's own tests and by any
// caller that does not need SQLite-backed persistence.
type Table struct {
	constructors map[string]Constructor
	functions    map[string]bool
	procedures   map[string]bool
	fields       map[string]bool
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{
		constructors: make(map[string]Constructor),
		functions:    make(map[string]bool),
		procedures:   make(map[string]bool),
		fields:       make(map[string]bool),
	}
}

// DefineConstructor registers a constructor belonging to typeName with the
// given ordered field names, and registers each field name as a field
// accessor.
func (t *Table) DefineConstructor(typeName, constructor string, fields []string) {
	t.constructors[constructor] = Constructor{Type: typeName, Fields: fields}
	for _, f := range fields {
		t.fields[f] = true
	}
}

// DefineFunction registers name as a user-defined function.
func (t *Table) DefineFunction(name string) { t.functions[name] = true }

// DefineProcedure registers name as a user-defined procedure.
func (t *Table) DefineProcedure(name string) { t.procedures[name] = true }

func (t *Table) ConstructorType(constructor string) (string, bool) {
	c, ok := t.constructors[constructor]
	if !ok {
		return "", false
	}
	return c.Type, true
}

func (t *Table) ConstructorFields(constructor string) ([]string, bool) {
	c, ok := t.constructors[constructor]
	if !ok {
		return nil, false
	}
	return c.Fields, true
}

func (t *Table) IsFunction(name string) bool  { return t.functions[name] }
func (t *Table) IsField(name string) bool     { return t.fields[name] }
func (t *Table) IsProcedure(name string) bool { return t.procedures[name] }

// ErrUnknownConstructor is returned by helpers that require a constructor
// to be registered but find it missing.
func ErrUnknownConstructor(name string) error {
	return fmt.Errorf("symtab: unknown constructor %q", name)
}
