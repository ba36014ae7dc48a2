package history_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/riderent/backend/internal/domain"
	"github.com/pkordes/riderent/backend/internal/history"
	"github.com/pkordes/riderent/backend/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var fixedNow = func() time.Time { return time.Date(2025, time.January, 8, 9, 0, 0, 0, time.UTC) }

func entry(name string) domain.RecentLocation {
	return domain.RecentLocation{Location: domain.Location{Name: name}}
}

func names(entries []domain.RecentLocation) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Location.Name
	}
	return out
}

// ---- Push ------------------------------------------------------------------

func TestPush_MostRecentFirst(t *testing.T) {
	var list []domain.RecentLocation
	for _, n := range []string{"Kuta", "Ubud", "Sanur"} {
		list = history.Push(list, entry(n))
	}

	assert.Equal(t, []string{"Sanur", "Ubud", "Kuta"}, names(list))
}

func TestPush_DistinctByName(t *testing.T) {
	list := []domain.RecentLocation{entry("Sanur"), entry("Ubud"), entry("Kuta")}

	got := history.Push(list, entry("Kuta"))

	assert.Equal(t, []string{"Kuta", "Sanur", "Ubud"}, names(got))
	assert.Equal(t, []string{"Sanur", "Ubud", "Kuta"}, names(list), "input untouched")
}

func TestPush_BoundedToFive(t *testing.T) {
	var list []domain.RecentLocation
	for i := 1; i <= 8; i++ {
		list = history.Push(list, entry(fmt.Sprintf("city-%d", i)))
	}

	require.Len(t, list, history.MaxEntries)
	assert.Equal(t, []string{"city-8", "city-7", "city-6", "city-5", "city-4"}, names(list))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "riderent-location-history", history.Key(""))
	assert.Equal(t, "riderent-location-history:device-1", history.Key("device-1"))
}

// ---- Recorder --------------------------------------------------------------

// failingStore is a Store whose every call fails.
type failingStore struct{}

func (failingStore) Load(context.Context, string) ([]domain.RecentLocation, error) {
	return nil, errors.New("storage down")
}
func (failingStore) Save(context.Context, string, []domain.RecentLocation) error {
	return errors.New("storage down")
}

func TestRecorder_RecordPersists(t *testing.T) {
	store := history.NewMemoryStore()
	rec := history.NewRecorder(store, discard, fixedNow)
	ctx := context.Background()

	rec.Record(ctx, "device-1", domain.Location{Name: "Ubud, Bali"}, "")
	got := rec.Record(ctx, "device-1", domain.Location{Name: "Kuta, Bali"}, "Jan 10 - Jan 14")

	assert.Equal(t, []string{"Kuta, Bali", "Ubud, Bali"}, names(got))
	assert.Equal(t, "Jan 10 - Jan 14", got[0].Dates)
	assert.Equal(t, fixedNow(), got[0].Timestamp)
	assert.Equal(t, got, rec.Recent(ctx, "device-1"))
	assert.Empty(t, rec.Recent(ctx, "device-2"), "histories are per client")
}

func TestRecorder_StorageFailureIsAbsorbed(t *testing.T) {
	rec := history.NewRecorder(failingStore{}, discard, fixedNow)
	ctx := context.Background()

	recent := rec.Recent(ctx, "")
	got := rec.Record(ctx, "", domain.Location{Name: "Sanur, Bali"}, "")

	assert.NotNil(t, recent)
	assert.Empty(t, recent)
	assert.Equal(t, []string{"Sanur, Bali"}, names(got))
}

// ---- RedisStore ------------------------------------------------------------

func newRedisStore(t *testing.T) (*history.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	client, mr := testutil.NewRedis(t)
	return history.NewRedisStore(client), mr
}

func TestRedisStore_MissingKeyIsEmpty(t *testing.T) {
	store, _ := newRedisStore(t)

	got, err := store.Load(context.Background(), history.StorageKey)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisStore_SaveThenLoad(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	want := []domain.RecentLocation{
		{Location: domain.Location{Name: "Current Location", Lat: -8.65, Lng: 115.13}, Timestamp: fixedNow()},
		{Location: domain.Location{Name: "Ubud, Bali"}, Dates: "Jan 10 - Jan 14", Timestamp: fixedNow()},
	}

	require.NoError(t, store.Save(ctx, history.StorageKey, want))
	got, err := store.Load(ctx, history.StorageKey)

	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, mr.Exists(history.StorageKey))
}

func TestRedisStore_CorruptValue(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set(history.StorageKey, "not json"))

	_, err := store.Load(context.Background(), history.StorageKey)

	assert.Error(t, err)
}

func TestRecorder_WithRedis(t *testing.T) {
	store, _ := newRedisStore(t)
	rec := history.NewRecorder(store, discard, fixedNow)
	ctx := context.Background()

	for _, n := range []string{"a", "b", "c", "d", "e", "f", "b"} {
		rec.Record(ctx, "device-9", domain.Location{Name: n}, "")
	}

	assert.Equal(t, []string{"b", "f", "e", "d", "c"}, names(rec.Recent(ctx, "device-9")))
}
