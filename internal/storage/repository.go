package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mindwell/portal-gateway/internal/config"
	"github.com/mindwell/portal-gateway/internal/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// Repository defines the interface for submission log persistence
type Repository interface {
	CreateSubmission(ctx context.Context, sub *models.Submission) error
	GetSubmission(ctx context.Context, id string) (*models.Submission, error)
	ListSubmissions(ctx context.Context, filters models.SubmissionFilters) ([]*models.Submission, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}

// Open connects to the configured driver. PostgreSQL schemas come from the
// migrations directory; SQLite creates its schema inline.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Repository, error) {
	switch cfg.Driver {
	case "postgres":
		repo, err := NewPostgresRepository(ctx, PostgresConfig{
			DSN:          cfg.DSN,
			MaxOpenConns: int32(cfg.MaxOpenConns),
			MaxIdleConns: int32(cfg.MaxIdleConns),
		})
		if err != nil {
			return nil, err
		}
		if cfg.MigrationsDir != "" {
			if err := RunMigrationsDir(ctx, repo.pool, cfg.MigrationsDir); err != nil {
				repo.Close()
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		return repo, nil
	case "sqlite":
		return NewSQLiteRepository(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}
