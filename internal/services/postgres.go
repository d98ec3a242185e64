package services

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresProvider checks the PostgreSQL server behind the submission log
type PostgresProvider struct {
	BaseProvider
	db *sql.DB
}

// NewPostgresProvider opens a small lib/pq pool against dsn
func NewPostgresProvider(dsn string) (*PostgresProvider, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &PostgresProvider{
		BaseProvider: BaseProvider{serviceType: "postgres"},
		db:           db,
	}, nil
}

// HealthCheck runs SELECT 1 against the server
func (p *PostgresProvider) HealthCheck(ctx context.Context) error {
	var one int
	if err := p.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("postgres health check: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (p *PostgresProvider) Close() error {
	return p.db.Close()
}
