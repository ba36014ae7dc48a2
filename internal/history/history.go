// Package history keeps the short list of locations a user searched recently.
//
// The list is bounded to MaxEntries, ordered most-recent-first, and holds each
// location name at most once. Storage is pluggable (memory, Redis, Postgres);
// storage failures are logged and never fail a search.
package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkordes/riderent/backend/internal/domain"
)

// StorageKey is the fixed key the history lives under.
const StorageKey = "riderent-location-history"

// MaxEntries bounds the history length.
const MaxEntries = 5

// Store reads and writes a whole history list under one key.
// Load returns an empty list, not an error, for a key that was never saved.
type Store interface {
	Load(ctx context.Context, key string) ([]domain.RecentLocation, error)
	Save(ctx context.Context, key string, entries []domain.RecentLocation) error
}

// Key returns the storage key for a client. Anonymous clients share StorageKey.
func Key(clientID string) string {
	if clientID == "" {
		return StorageKey
	}
	return StorageKey + ":" + clientID
}

// Push returns entries with e in front, any older entry with the same
// location name removed, truncated to MaxEntries. entries is not modified.
func Push(entries []domain.RecentLocation, e domain.RecentLocation) []domain.RecentLocation {
	out := make([]domain.RecentLocation, 0, MaxEntries)
	out = append(out, e)
	for _, old := range entries {
		if len(out) == MaxEntries {
			break
		}
		if old.Location.Name == e.Location.Name {
			continue
		}
		out = append(out, old)
	}
	return out
}

// Recorder reads and updates client histories on top of a Store.
type Recorder struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// NewRecorder constructs a Recorder. now stamps new entries; pass time.Now
// in production.
func NewRecorder(store Store, log *slog.Logger, now func() time.Time) *Recorder {
	return &Recorder{store: store, log: log, now: now}
}

// Recent returns the client's history. A storage failure is logged and
// yields an empty history.
func (r *Recorder) Recent(ctx context.Context, clientID string) []domain.RecentLocation {
	entries, err := r.store.Load(ctx, Key(clientID))
	if err != nil {
		r.log.WarnContext(ctx, "failed to load location history", "client_id", clientID, "error", err)
		return []domain.RecentLocation{}
	}
	if entries == nil {
		entries = []domain.RecentLocation{}
	}
	return entries
}

// Record pushes loc (with an optional dates label) onto the client's history,
// saves it, and returns the updated list. A failed save is logged; the
// updated list is still returned so the current session stays consistent.
func (r *Recorder) Record(ctx context.Context, clientID string, loc domain.Location, dates string) []domain.RecentLocation {
	updated := Push(r.Recent(ctx, clientID), domain.RecentLocation{
		Location:  loc,
		Dates:     dates,
		Timestamp: r.now().UTC(),
	})
	if err := r.store.Save(ctx, Key(clientID), updated); err != nil {
		r.log.WarnContext(ctx, "failed to save location history", "client_id", clientID, "error", err)
	}
	return updated
}
