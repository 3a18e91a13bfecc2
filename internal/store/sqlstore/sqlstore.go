package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the sqlx-backed persistence gateway. It speaks both sqlite
// (the single-file store the desktop deployments use) and postgres.
// Queries are written with ? placeholders and rebound per driver.
type Store struct {
	db     *sqlx.DB
	driver string
}

// New opens a database connection for the given driver ("sqlite3" or
// "postgres") and runs schema migration.
func New(driver, dsn string) (*Store, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		// sqlite serializes writers; a single connection avoids
		// SQLITE_BUSY under concurrent handlers.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// insert executes an INSERT and returns the new row id. Postgres has no
// LastInsertId, so the query is extended with RETURNING id there.
func (s *Store) insert(ctx context.Context, q sqlx.ExtContext, query string, args ...interface{}) (int64, error) {
	if s.driver == "postgres" {
		var id int64
		err := sqlx.GetContext(ctx, q, &id, s.db.Rebind(query+" RETURNING id"), args...)
		return id, err
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// rebind adapts ? placeholders to the driver's bind style.
func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}

// whereClause joins conditions into a WHERE clause, or returns "" when
// there are none.
func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}
