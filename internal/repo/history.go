// Package repo contains the database access logic for the RideRent search API.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/riderent/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// HistoryRepo persists recent-location histories, one JSONB row per storage key.
// It satisfies history.Store.
type HistoryRepo interface {
	// Load returns the entries stored under key, or an empty slice when the
	// key has never been saved.
	Load(ctx context.Context, key string) ([]domain.RecentLocation, error)

	// Save replaces the entries stored under key.
	Save(ctx context.Context, key string, entries []domain.RecentLocation) error
}

type pgHistoryRepo struct {
	db db
}

// NewHistoryRepo constructs a HistoryRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewHistoryRepo(db db) HistoryRepo {
	return &pgHistoryRepo{db: db}
}

func (r *pgHistoryRepo) Load(ctx context.Context, key string) ([]domain.RecentLocation, error) {
	const q = `
		SELECT entries
		FROM location_history
		WHERE key = @key`

	var entries []domain.RecentLocation
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"key": key}).Scan(&entries)
	if errors.Is(err, pgx.ErrNoRows) {
		return []domain.RecentLocation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repo.HistoryRepo.Load: %w", err)
	}
	if entries == nil {
		entries = []domain.RecentLocation{}
	}
	return entries, nil
}

// Save upserts the row for key; the JSONB column is encoded by pgx.
func (r *pgHistoryRepo) Save(ctx context.Context, key string, entries []domain.RecentLocation) error {
	const q = `
		INSERT INTO location_history (key, entries)
		VALUES (@key, @entries)
		ON CONFLICT (key) DO UPDATE
		SET entries    = EXCLUDED.entries,
		    updated_at = now()`

	if entries == nil {
		entries = []domain.RecentLocation{}
	}

	args := pgx.NamedArgs{
		"key":     key,
		"entries": entries,
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.HistoryRepo.Save: %w", err)
	}
	return nil
}
