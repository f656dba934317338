// Package sqlstore implements storage.Driver on top of ent's SQL dialect
// builders. It is database-agnostic and is embedded by the sqlite and
// postgres drivers.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/papercomputeco/folio/pkg/storage"
)

const (
	tableDocuments = "documents"
	tableLanguages = "document_languages"
	tableSubjects  = "document_subjects"
	tableAuthors   = "document_authors"
	tableKeywords  = "keywords"
	tableNeighbors = "neighbors"
)

// chunkSize bounds the number of bound parameters per IN list and per
// multi-row insert.
const chunkSize = 500

// Dialect describes the database specifics the store cannot infer from
// ent's dialect name alone.
type Dialect struct {
	// Name is an ent dialect name, dialect.SQLite or dialect.Postgres.
	Name string

	// RegexOp is the infix operator for regular expression matches,
	// e.g. "REGEXP" or "~".
	RegexOp string
}

// Store provides storage operations using an ent SQL driver.
type Store struct {
	drv     *entsql.Driver
	b       *entsql.DialectBuilder
	regexOp string
}

var _ storage.Driver = (*Store)(nil)

// New wraps db with ent's SQL driver and creates the schema if needed.
func New(ctx context.Context, db *sql.DB, d Dialect) (*Store, error) {
	if d.Name != dialect.SQLite && d.Name != dialect.Postgres {
		return nil, fmt.Errorf("unsupported dialect: %q", d.Name)
	}

	s := &Store{
		drv:     entsql.OpenDB(d.Name, db),
		b:       entsql.Dialect(d.Name),
		regexOp: d.RegexOp,
	}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.drv.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (s *Store) exec(ctx context.Context, ex dialect.ExecQuerier, q entsql.Querier) error {
	query, args := q.Query()
	if err := builderErr(q); err != nil {
		return err
	}
	return ex.Exec(ctx, query, args, nil)
}

// query runs q and hands every row to scan. Rows are closed before query
// returns so callers may issue further statements on a single connection.
func (s *Store) query(ctx context.Context, q entsql.Querier, scan func(*entsql.Rows) error) error {
	query, args := q.Query()
	if err := builderErr(q); err != nil {
		return err
	}

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(&rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// inTx runs fn in a transaction, rolling back when fn fails.
func (s *Store) inTx(ctx context.Context, fn func(tx dialect.Tx) error) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// builderErr returns the error recorded while building q, if any.
func builderErr(q entsql.Querier) error {
	if qe, ok := q.(interface{ Err() error }); ok {
		return qe.Err()
	}
	return nil
}

func chunks[T any](items []T, size int) [][]T {
	var out [][]T
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}

func anys[T any](items []T) []any {
	out := make([]any, len(items))
	for i, v := range items {
		out[i] = v
	}
	return out
}

// Reset deletes every row of every table.
func (s *Store) Reset(ctx context.Context) error {
	err := s.inTx(ctx, func(tx dialect.Tx) error {
		for _, table := range []string{tableDocuments, tableLanguages, tableSubjects, tableAuthors, tableKeywords, tableNeighbors} {
			if err := s.exec(ctx, tx, s.b.Delete(table)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storage.Unavailable("reset", err)
	}
	return nil
}
