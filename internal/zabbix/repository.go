// Package zabbix is the only component that touches the monitoring database.
// Every query is read-only and parameterized; user text is never interpolated
// into SQL.
package zabbix

import (
	"context"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// ErrUnavailable reports that the database is unreachable or a query failed.
// Callers match it with errors.Is and degrade instead of fabricating answers.
var ErrUnavailable = errors.New("zabbix data source unavailable")

// Config holds connection settings for the Zabbix database.
type Config struct {
	DSN             string
	PoolSize        int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

// Repository implements the fixed query set against the Zabbix schema.
type Repository struct {
	db *sqlx.DB
}

// NewRepository opens the connection pool. The pool size bounds the service's
// effective concurrency for data fetching. Connections are established
// lazily; a database that is down at startup surfaces as ErrUnavailable on
// the first query, not as a boot failure.
func NewRepository(cfg Config) (*Repository, error) {
	db, err := sqlx.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL configuration: %w", err)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 5
	}
	maxIdle := cfg.MaxIdle
	if maxIdle <= 0 {
		maxIdle = poolSize
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = 5 * time.Minute
	}

	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)

	return &Repository{db: db}, nil
}

// NewRepositoryWithDB wraps an existing connection. Used in tests.
func NewRepositoryWithDB(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Close closes the database connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping verifies database connectivity. Used by the health probe.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// unavailable wraps a driver error so callers can match ErrUnavailable while
// keeping the underlying cause in the message.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrUnavailable)
}
