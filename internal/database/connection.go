package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// DB is the subset of sqlx the repositories use
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	PingContext(ctx context.Context) error
	Close() error
}

// PostgresDB implements DB using sqlx
type PostgresDB struct {
	*sqlx.DB
}

// NewConnection opens and pings the session database
func NewConnection(ctx context.Context, cfg config.DatabaseConfig) (*PostgresDB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	// poolers such as PgBouncer in transaction mode reject named prepared statements
	connectionURL := cfg.URL
	if !strings.Contains(connectionURL, "prefer_simple_protocol") {
		separator := "?"
		if strings.Contains(connectionURL, "?") {
			separator = "&"
		}
		connectionURL = connectionURL + separator + "prefer_simple_protocol=true"
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", connectionURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxLifetime / 2)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{DB: db}, nil
}

// EnsureSchema creates the web session tables when missing
func EnsureSchema(ctx context.Context, db DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
