// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sync"

	"entgo.io/ent/dialect"
	"github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/folio/pkg/storage/sqlstore"
)

// driverName is the database/sql name of the mattn driver with the
// regexp function registered on every connection.
const driverName = "sqlite3_folio"

var registerOnce sync.Once

func register() {
	registerOnce.Do(func() {
		sql.Register(driverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("regexp", matchRegexp, true)
			},
		})
	})
}

var patterns sync.Map // string -> *regexp.Regexp

// matchRegexp backs the REGEXP operator: "x REGEXP y" calls regexp(y, x).
func matchRegexp(pattern, s string) (bool, error) {
	if re, ok := patterns.Load(pattern); ok {
		return re.(*regexp.Regexp).MatchString(s), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	patterns.Store(pattern, re)
	return re.MatchString(s), nil
}

// Driver implements storage.Driver using SQLite.
type Driver struct {
	*sqlstore.Store
}

// NewDriver creates a new SQLite-backed store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	register()

	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and serializes
	// writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store, err := sqlstore.New(ctx, db, sqlstore.Dialect{
		Name:    dialect.SQLite,
		RegexOp: "REGEXP",
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Driver{Store: store}, nil
}
