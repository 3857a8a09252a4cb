package symtab

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// identifierPattern restricts the constructor and field names
// DefineConstructor accepts to alphanumeric/underscore identifiers, since
// they come from source files that may be shared across a team. Lookups
// are not checked against it.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// SQLiteCatalog is a SymbolTable backed by an embedded SQLite database,
// used for large multi-file projects where re-deriving the catalog on
// every compile would be wasteful. It is read-only from the compiler's
// point of view; writes happen ahead of time via Define*.
type SQLiteCatalog struct {
	db *sql.DB
}

// OpenSQLiteCatalog opens (creating if necessary) a catalog database at
// path and ensures its schema exists. Use ":memory:" for ephemeral use in
// tests.
func OpenSQLiteCatalog(path string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("symtab: open sqlite catalog: %w", err)
	}
	c := &SQLiteCatalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLiteCatalog) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS constructors (
			name TEXT PRIMARY KEY,
			type_name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS constructor_fields (
			constructor TEXT NOT NULL,
			position INTEGER NOT NULL,
			field_name TEXT NOT NULL,
			PRIMARY KEY (constructor, position)
		)`,
		`CREATE TABLE IF NOT EXISTS functions (name TEXT PRIMARY KEY)`,
		`CREATE TABLE IF NOT EXISTS procedures (name TEXT PRIMARY KEY)`,
		`CREATE TABLE IF NOT EXISTS fields (name TEXT PRIMARY KEY)`,
	}
	for _, stmt := range stmts {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("symtab: migrate: %w", err)
		}
	}
	return nil
}

func validIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("symtab: invalid identifier %q", name)
	}
	return nil
}

// DefineConstructor persists a constructor's owning type and ordered
// field list.
func (c *SQLiteCatalog) DefineConstructor(typeName, constructor string, fields []string) error {
	if err := validIdentifier(constructor); err != nil {
		return err
	}
	if _, err := c.db.Exec(`INSERT OR REPLACE INTO constructors (name, type_name) VALUES (?, ?)`, constructor, typeName); err != nil {
		return fmt.Errorf("symtab: define constructor: %w", err)
	}
	if _, err := c.db.Exec(`DELETE FROM constructor_fields WHERE constructor = ?`, constructor); err != nil {
		return fmt.Errorf("symtab: clear constructor fields: %w", err)
	}
	for i, f := range fields {
		if err := validIdentifier(f); err != nil {
			return err
		}
		if _, err := c.db.Exec(`INSERT INTO constructor_fields (constructor, position, field_name) VALUES (?, ?, ?)`, constructor, i, f); err != nil {
			return fmt.Errorf("symtab: insert constructor field: %w", err)
		}
		if _, err := c.db.Exec(`INSERT OR IGNORE INTO fields (name) VALUES (?)`, f); err != nil {
			return fmt.Errorf("symtab: register field: %w", err)
		}
	}
	return nil
}

// DefineFunction persists name as a user-defined function.
func (c *SQLiteCatalog) DefineFunction(name string) error {
	_, err := c.db.Exec(`INSERT OR IGNORE INTO functions (name) VALUES (?)`, name)
	return err
}

// DefineProcedure persists name as a user-defined procedure.
func (c *SQLiteCatalog) DefineProcedure(name string) error {
	_, err := c.db.Exec(`INSERT OR IGNORE INTO procedures (name) VALUES (?)`, name)
	return err
}

func (c *SQLiteCatalog) ConstructorType(constructor string) (string, bool) {
	var typeName string
	err := c.db.QueryRow(`SELECT type_name FROM constructors WHERE name = ?`, constructor).Scan(&typeName)
	if err != nil {
		return "", false
	}
	return typeName, true
}

func (c *SQLiteCatalog) ConstructorFields(constructor string) ([]string, bool) {
	rows, err := c.db.Query(`SELECT field_name FROM constructor_fields WHERE constructor = ? ORDER BY position`, constructor)
	if err != nil {
		return nil, false
	}
	defer rows.Close()
	var fields []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, false
		}
		fields = append(fields, f)
	}
	if _, ok := c.ConstructorType(constructor); !ok {
		return nil, false
	}
	return fields, true
}

func (c *SQLiteCatalog) exists(table, name string) bool {
	var got string
	err := c.db.QueryRow(fmt.Sprintf(`SELECT name FROM %s WHERE name = ?`, table), name).Scan(&got)
	return err == nil && strings.EqualFold(got, name)
}

func (c *SQLiteCatalog) IsFunction(name string) bool  { return c.exists("functions", name) }
func (c *SQLiteCatalog) IsField(name string) bool     { return c.exists("fields", name) }
func (c *SQLiteCatalog) IsProcedure(name string) bool { return c.exists("procedures", name) }

// Close releases the underlying database handle.
func (c *SQLiteCatalog) Close() error { return c.db.Close() }
