// Package citycatalog holds the list of cities a search session can pick from.
//
// A Catalog is filled by exactly one fetch per load. Every load is tagged with
// a generation token; results that arrive for an old token (the session was
// closed or reloaded in the meantime) are dropped instead of being applied.
package citycatalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pkordes/riderent/backend/internal/domain"
)

// Fetcher returns the ordered list of city names offered by the backend.
type Fetcher interface {
	Cities(ctx context.Context) ([]string, error)
}

// Token identifies one load of a Catalog.
type Token uint64

// Option is one selectable entry in the city picker.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// AllCitiesOption is always offered first, whatever the catalog holds.
var AllCitiesOption = Option{Label: domain.AllCitiesLabel, Value: domain.AllCities}

// Catalog is safe for concurrent use: the fetch goroutine writes it while
// request handlers read it.
type Catalog struct {
	mu      sync.Mutex
	gen     Token
	loading bool
	cities  []string
}

// New returns an empty catalog that is not loading.
func New() *Catalog {
	return &Catalog{}
}

// Begin starts a new load: it clears the catalog, raises the loading flag and
// returns the token the eventual result must carry.
func (c *Catalog) Begin() Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.loading = true
	c.cities = nil
	return c.gen
}

// Complete applies the result of the load identified by tok.
// On error the catalog stays empty. It reports false, changing nothing,
// when tok is stale.
func (c *Catalog) Complete(tok Token, cities []string, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tok != c.gen {
		return false
	}
	c.loading = false
	if err != nil {
		c.cities = nil
		return true
	}
	// Server order is authoritative: no sorting, no dedup.
	c.cities = append([]string(nil), cities...)
	return true
}

// Invalidate makes any in-flight load stale and clears the loading flag.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.loading = false
}

// Loading reports whether a load is in flight.
func (c *Catalog) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Cities returns a copy of the loaded city names.
func (c *Catalog) Cities() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.cities...)
}

// Options returns AllCitiesOption followed by every city matching query.
func (c *Catalog) Options(query string) []Option {
	matches := Filter(c.Cities(), query)

	opts := make([]Option, 0, len(matches)+1)
	opts = append(opts, AllCitiesOption)
	for _, city := range matches {
		opts = append(opts, Option{Label: city, Value: city})
	}
	return opts
}

// Fetch runs one load for tok against f and applies the result.
// A failed fetch is logged and leaves the catalog empty; it is never returned
// to the caller. Meant to be run in its own goroutine right after Begin.
func (c *Catalog) Fetch(ctx context.Context, tok Token, f Fetcher, log *slog.Logger) {
	cities, err := f.Cities(ctx)
	if err != nil {
		log.WarnContext(ctx, "city catalog fetch failed", "error", err)
	}
	if !c.Complete(tok, cities, err) {
		log.DebugContext(ctx, "discarding stale city catalog result", "token", uint64(tok))
	}
}

// Filter returns the cities containing query, case-insensitively, in their
// original order. An empty query matches everything. cities is not modified.
func Filter(cities []string, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]string, 0, len(cities))
	for _, city := range cities {
		if q == "" || strings.Contains(strings.ToLower(city), q) {
			out = append(out, city)
		}
	}
	return out
}
