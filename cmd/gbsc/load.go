package main

import (
	"fmt"
	"os"

	"github.com/alanrodas/gobstones-compiler/pkg/ast"
	"github.com/alanrodas/gobstones-compiler/pkg/astjson"
	"github.com/alanrodas/gobstones-compiler/pkg/code"
	"github.com/alanrodas/gobstones-compiler/pkg/compiler"
	"github.com/alanrodas/gobstones-compiler/pkg/messages"
	"github.com/alanrodas/gobstones-compiler/pkg/primitives"
	"github.com/alanrodas/gobstones-compiler/pkg/symtab"
)

// loadAST reads the AST document at path (see pkg/astjson). This module
// takes a linted AST as input and has no parser of its own.
func loadAST(path string) (*ast.AST, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	tree, err := astjson.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return tree, nil
}

// compileFile loads and compiles path against the default in-memory
// symbol table and primitives catalog.
func compileFile(path string) (*code.Code, error) {
	return compileFileWithCatalog(path, symtab.NewTable())
}

// compileFileWithCatalog loads and compiles path against an
// explicitly-provided symbol table, such as one backed by
// symtab.SQLiteCatalog for a project too large to re-derive on every
// compile.
func compileFileWithCatalog(path string, st symtab.SymbolTable) (*code.Code, error) {
	tree, err := loadAST(path)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(tree, st, primitives.Default(), messages.Default())
}

// openCatalog opens a symtab.SQLiteCatalog at path if path is non-empty,
// otherwise it returns an empty in-memory Table.
func openCatalog(path string) (symtab.SymbolTable, func() error, error) {
	if path == "" {
		return symtab.NewTable(), func() error { return nil }, nil
	}
	c, err := symtab.OpenSQLiteCatalog(path)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}
