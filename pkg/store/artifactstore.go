package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	_ "github.com/go-sql-driver/mysql" // driver for config.StoreMySQL
	_ "github.com/lib/pq"              // driver for config.StorePostgres
)

// ArtifactStore persists the disassembled form of compiled Code, keyed
// by a content hash of the source AST, in a relational table. Unlike the
// AST store, a compiled artifact is a flat row: hash, disassembly text,
// and a timestamp, so a SQL backend fits better than a document store.
type ArtifactStore struct {
	db     *sql.DB
	driver string
}

// OpenPostgres opens an ArtifactStore backed by PostgreSQL at dsn.
func OpenPostgres(dsn string) (*ArtifactStore, error) {
	return open("postgres", dsn)
}

// OpenMySQL opens an ArtifactStore backed by MySQL at dsn.
func OpenMySQL(dsn string) (*ArtifactStore, error) {
	return open("mysql", dsn)
}

func open(driver, dsn string) (*ArtifactStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: pinging %s: %w", driver, err)
	}
	s := &ArtifactStore{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *ArtifactStore) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS compiled_artifacts (
	hash VARCHAR(64) PRIMARY KEY,
	disassembly TEXT NOT NULL,
	instruction_count INT NOT NULL,
	compiled_at TIMESTAMP NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("store: migrating %s: %w", s.driver, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *ArtifactStore) Close() error { return s.db.Close() }

const (
	mysqlPutQuery = `INSERT INTO compiled_artifacts (hash, disassembly, instruction_count, compiled_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON DUPLICATE KEY UPDATE disassembly = VALUES(disassembly), instruction_count = VALUES(instruction_count), compiled_at = CURRENT_TIMESTAMP`

	postgresPutQuery = `INSERT INTO compiled_artifacts (hash, disassembly, instruction_count, compiled_at)
VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
ON CONFLICT (hash) DO UPDATE SET disassembly = EXCLUDED.disassembly, instruction_count = EXCLUDED.instruction_count, compiled_at = CURRENT_TIMESTAMP`
)

// Put records the disassembly of a compiled artifact under hash,
// overwriting any prior row for the same hash.
func (s *ArtifactStore) Put(ctx context.Context, hash string, disasm io.Reader, instructionCount int) error {
	body, err := io.ReadAll(disasm)
	if err != nil {
		return fmt.Errorf("store: reading disassembly: %w", err)
	}
	query := mysqlPutQuery
	switch s.driver {
	case "postgres":
		query = postgresPutQuery
	case "sqlite":
		query = `INSERT INTO compiled_artifacts (hash, disassembly, instruction_count, compiled_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (hash) DO UPDATE SET disassembly = excluded.disassembly, instruction_count = excluded.instruction_count, compiled_at = CURRENT_TIMESTAMP`
	}
	if _, err := s.db.ExecContext(ctx, query, hash, string(body), instructionCount); err != nil {
		return fmt.Errorf("store: inserting artifact %s: %w", hash, err)
	}
	return nil
}

// Get returns the stored disassembly text for hash, or ("", false, nil)
// if no artifact is recorded under it.
func (s *ArtifactStore) Get(ctx context.Context, hash string) (string, bool, error) {
	query := "SELECT disassembly FROM compiled_artifacts WHERE hash = ?"
	if s.driver == "postgres" {
		query = "SELECT disassembly FROM compiled_artifacts WHERE hash = $1"
	}
	var disasm string
	err := s.db.QueryRowContext(ctx, query, hash).Scan(&disasm)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: fetching artifact %s: %w", hash, err)
	}
	return disasm, true, nil
}
