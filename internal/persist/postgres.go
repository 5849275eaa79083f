package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lib/pq"

	"github.com/safar/go-pos-store/internal/config"
)

// PostgresStore keeps snapshots in a single key/blob table. Saves retry
// on transient Postgres failures (deadlock, serialization, lock timeout)
// with exponential backoff; constraint violations and the like fail
// immediately.
type PostgresStore struct {
	db *sql.DB
}

const snapshotSchema = `
	CREATE TABLE IF NOT EXISTS pos_snapshots (
		key        TEXT PRIMARY KEY,
		blob       BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

func NewPostgresStore(cfg *config.DatabaseConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure snapshot table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Save(ctx context.Context, key string, blob []byte) error {
	err := withRetry(ctx, 3, func() error {
		_, err := p.db.ExecContext(ctx,
			`INSERT INTO pos_snapshots (key, blob, updated_at)
			 VALUES ($1, $2, NOW())
			 ON CONFLICT (key) DO UPDATE
			 SET blob = EXCLUDED.blob, updated_at = NOW()`,
			key, blob)
		return err
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStore) Load(ctx context.Context, key string) ([]byte, error) {
	var blob []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT blob FROM pos_snapshots WHERE key = $1`, key).Scan(&blob)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return blob, nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}

func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}

func withRetry(ctx context.Context, maxRetries int, fn func() error) error {
	backoff := 50 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		if attempt == maxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, lastErr)
		}

		jitter := time.Duration(rand.Int63n(int64(backoff / 4)))
		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}

	return lastErr
}
