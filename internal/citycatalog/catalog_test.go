package citycatalog_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/riderent/backend/internal/citycatalog"
)

// fetcherFunc adapts a function to citycatalog.Fetcher.
type fetcherFunc func(ctx context.Context) ([]string, error)

func (f fetcherFunc) Cities(ctx context.Context) ([]string, error) { return f(ctx) }

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var bali = []string{"Seminyak, Bali", "Ubud, Bali", "Kuta, Bali", "Surabaya", "Ubud, Bali"}

func TestFilter_CaseInsensitiveSubstring(t *testing.T) {
	got := citycatalog.Filter(bali, "UBUD")

	assert.Equal(t, []string{"Ubud, Bali", "Ubud, Bali"}, got)
}

func TestFilter_EmptyQueryMatchesAll(t *testing.T) {
	assert.Equal(t, bali, citycatalog.Filter(bali, "  "))
}

func TestFilter_IsPure(t *testing.T) {
	in := append([]string(nil), bali...)

	first := citycatalog.Filter(in, "bali")
	second := citycatalog.Filter(in, "bali")

	assert.Equal(t, first, second)
	assert.Equal(t, bali, in, "input must not be modified")
}

func TestCatalog_AllCitiesWhileLoadingAndEmpty(t *testing.T) {
	c := citycatalog.New()
	c.Begin()

	require.True(t, c.Loading())
	assert.Equal(t, []citycatalog.Option{citycatalog.AllCitiesOption}, c.Options(""))
	assert.Equal(t, []citycatalog.Option{citycatalog.AllCitiesOption}, c.Options("zzz"))
}

func TestCatalog_FetchStoresServerOrderVerbatim(t *testing.T) {
	c := citycatalog.New()
	tok := c.Begin()

	c.Fetch(context.Background(), tok, fetcherFunc(func(context.Context) ([]string, error) {
		return bali, nil
	}), discard)

	assert.False(t, c.Loading())
	assert.Equal(t, bali, c.Cities(), "no sort, no dedup")

	opts := c.Options("ubud")
	require.Len(t, opts, 3)
	assert.Equal(t, citycatalog.AllCitiesOption, opts[0])
	assert.Equal(t, citycatalog.Option{Label: "Ubud, Bali", Value: "Ubud, Bali"}, opts[1])
}

func TestCatalog_FetchFailureLeavesCatalogEmpty(t *testing.T) {
	c := citycatalog.New()
	tok := c.Begin()

	c.Fetch(context.Background(), tok, fetcherFunc(func(context.Context) ([]string, error) {
		return nil, errors.New("connection refused")
	}), discard)

	assert.False(t, c.Loading())
	assert.Empty(t, c.Cities())
	assert.Equal(t, []citycatalog.Option{citycatalog.AllCitiesOption}, c.Options(""))
}

func TestCatalog_StaleResultIsDiscarded(t *testing.T) {
	c := citycatalog.New()
	stale := c.Begin()
	c.Invalidate()

	applied := c.Complete(stale, bali, nil)

	assert.False(t, applied)
	assert.Empty(t, c.Cities())
	assert.False(t, c.Loading())
}

func TestCatalog_ReloadDropsOlderResult(t *testing.T) {
	c := citycatalog.New()
	first := c.Begin()
	second := c.Begin()

	assert.False(t, c.Complete(first, []string{"Old"}, nil))
	assert.True(t, c.Complete(second, []string{"New"}, nil))
	assert.Equal(t, []string{"New"}, c.Cities())
}

func TestCatalog_CitiesReturnsCopy(t *testing.T) {
	c := citycatalog.New()
	c.Complete(c.Begin(), []string{"Kuta, Bali"}, nil)

	got := c.Cities()
	got[0] = "mutated"

	assert.Equal(t, []string{"Kuta, Bali"}, c.Cities())
}
