// Package service contains the business logic for the RideRent search API.
// Services own the search sessions, talk to the remote rental API through
// small interfaces, and never touch HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/riderent/backend/internal/calendar"
	"github.com/pkordes/riderent/backend/internal/citycatalog"
	"github.com/pkordes/riderent/backend/internal/domain"
	"github.com/pkordes/riderent/backend/internal/search"
)

// HistoryRecorder reads and updates a client's recent-location history.
// Implemented by *history.Recorder; failures are absorbed by the implementation.
type HistoryRecorder interface {
	Recent(ctx context.Context, clientID string) []domain.RecentLocation
	Record(ctx context.Context, clientID string, loc domain.Location, dates string) []domain.RecentLocation
}

// DefaultFetchTimeout bounds the city fetch when SessionConfig leaves it unset.
const DefaultFetchTimeout = 10 * time.Second

// SessionConfig tunes the session service.
type SessionConfig struct {
	Variant      domain.SearchVariant
	Location     *time.Location // zone "today" is evaluated in
	TTL          time.Duration  // idle time before a session is swept
	FetchTimeout time.Duration  // bound on the city catalog fetch
}

// SessionView is the read model of one search session.
type SessionView struct {
	ID            uuid.UUID
	ClientID      string
	Variant       domain.SearchVariant
	Tabs          []search.Tab
	State         search.SelectionState
	SelectingEnd  bool
	Completion    search.Completion
	Ready         bool
	DayCount      int // 0 until both dates are set
	Month         calendar.Month
	Today         calendar.Date
	CitiesLoading bool
	Recent        []domain.RecentLocation
}

// CityList is the city picker content for one filter string.
type CityList struct {
	Loading bool
	Options []citycatalog.Option
}

// CalendarView is one rendered month of the date picker.
type CalendarView struct {
	Month    calendar.Month
	Today    calendar.Date
	Weekdays []string
	Cells    []calendar.Cell
}

type session struct {
	id       uuid.UUID
	clientID string
	lastSeen atomic.Int64 // unix nanos; read by the sweeper without mu

	mu      sync.Mutex
	closed  bool
	coord   *search.Coordinator
	catalog *citycatalog.Catalog
	recent  []domain.RecentLocation
	cancel  context.CancelFunc
}

// SessionService keeps the in-memory table of search sessions. Each session
// owns one search.Coordinator and one city catalog. It is safe for concurrent
// use; calls for the same session are serialised.
type SessionService struct {
	cities  citycatalog.Fetcher
	history HistoryRecorder
	log     *slog.Logger
	cfg     SessionConfig
	now     func() time.Time

	root context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// NewSessionService constructs a SessionService. now is the wall clock;
// pass time.Now in production.
func NewSessionService(cities citycatalog.Fetcher, history HistoryRecorder, log *slog.Logger, cfg SessionConfig, now func() time.Time) *SessionService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	root, stop := context.WithCancel(context.Background())
	return &SessionService{
		cities:   cities,
		history:  history,
		log:      log,
		cfg:      cfg,
		now:      now,
		root:     root,
		stop:     stop,
		sessions: make(map[uuid.UUID]*session),
	}
}

// today is the current calendar day in the configured zone.
func (s *SessionService) today() calendar.Date {
	return calendar.DateOf(s.now().In(s.cfg.Location))
}

// Open starts a session: fresh selection state, the client's history, and
// exactly one background fetch of the city catalog.
func (s *SessionService) Open(ctx context.Context, clientID string) (SessionView, error) {
	sess := &session{
		id:       uuid.New(),
		clientID: clientID,
		coord:    search.NewCoordinator(s.cfg.Variant, s.today),
		catalog:  citycatalog.New(),
		recent:   s.history.Recent(ctx, clientID),
	}
	sess.lastSeen.Store(s.now().UnixNano())

	tok := sess.catalog.Begin()
	fetchCtx, cancel := context.WithTimeout(s.root, s.cfg.FetchTimeout)
	sess.cancel = cancel

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	log := s.log.With("session_id", sess.id.String())
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		sess.catalog.Fetch(fetchCtx, tok, s.cities, log)
	}()

	log.InfoContext(ctx, "search session opened", "variant", string(s.cfg.Variant))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// Get returns the current view of a session.
func (s *SessionService) Get(_ context.Context, id uuid.UUID) (SessionView, error) {
	var v SessionView
	err := s.with(id, "Get", func(sess *session) error {
		v = sess.view()
		return nil
	})
	return v, err
}

// Close discards a session and cancels its catalog fetch.
// Returns domain.ErrNotFound for an unknown or already closed session.
func (s *SessionService) Close(ctx context.Context, id uuid.UUID) error {
	sess := s.remove(id)
	if sess == nil {
		return fmt.Errorf("service.SessionService.Close: %w", domain.ErrNotFound)
	}
	sess.mu.Lock()
	sess.shutdown()
	sess.mu.Unlock()

	s.log.InfoContext(ctx, "search session closed", "session_id", id.String())
	return nil
}

// SwitchTab activates a tab without changing any selection.
func (s *SessionService) SwitchTab(_ context.Context, id uuid.UUID, tab search.Tab) (SessionView, error) {
	return s.mutate(id, "SwitchTab", func(sess *session) error {
		return sess.coord.SwitchTab(tab)
	})
}

// Cities returns the selectable cities matching query: All Cities first,
// then matching catalog entries in server order.
func (s *SessionService) Cities(_ context.Context, id uuid.UUID, query string) (CityList, error) {
	var list CityList
	err := s.with(id, "Cities", func(sess *session) error {
		list = CityList{Loading: sess.catalog.Loading(), Options: sess.catalog.Options(query)}
		return nil
	})
	return list, err
}

// SelectCity picks a city (domain.AllCities for everywhere) and records it
// in the client's history.
func (s *SessionService) SelectCity(ctx context.Context, id uuid.UUID, city string) (SessionView, error) {
	return s.mutate(id, "SelectCity", func(sess *session) error {
		label := city
		if city == domain.AllCities {
			label = domain.AllCitiesLabel
		}
		sess.coord.SelectCity(city)
		sess.recent = s.history.Record(ctx, sess.clientID, domain.Location{Name: label}, "")
		return nil
	})
}

// SelectCurrentLocation picks the device position as the search location.
// Out-of-range coordinates are a domain.ErrValidation.
func (s *SessionService) SelectCurrentLocation(ctx context.Context, id uuid.UUID, lat, lng float64) (SessionView, error) {
	loc, err := domain.NewCurrentLocation(lat, lng)
	if err != nil {
		return SessionView{}, fmt.Errorf("service.SessionService.SelectCurrentLocation: %w", err)
	}
	return s.mutate(id, "SelectCurrentLocation", func(sess *session) error {
		sess.coord.SelectLocation(loc)
		sess.recent = s.history.Record(ctx, sess.clientID, loc, "")
		return nil
	})
}

// SelectAnywhere is the "Anywhere" shortcut: it selects all cities.
func (s *SessionService) SelectAnywhere(ctx context.Context, id uuid.UUID) (SessionView, error) {
	return s.mutate(id, "SelectAnywhere", func(sess *session) error {
		sess.coord.SelectCity(domain.AllCities)
		sess.recent = s.history.Record(ctx, sess.clientID, domain.Location{Name: domain.AnywhereName}, "")
		return nil
	})
}

// ClickDate applies one calendar click. The bool reports whether the click
// committed the range.
func (s *SessionService) ClickDate(_ context.Context, id uuid.UUID, d calendar.Date) (SessionView, bool, error) {
	var completed bool
	v, err := s.mutate(id, "ClickDate", func(sess *session) error {
		var err error
		completed, err = sess.coord.ClickDate(d)
		return err
	})
	return v, completed, err
}

// QuickSelect sets an n-day range starting today.
func (s *SessionService) QuickSelect(_ context.Context, id uuid.UUID, n int) (SessionView, error) {
	return s.mutate(id, "QuickSelect", func(sess *session) error {
		return sess.coord.QuickSelect(n)
	})
}

// Calendar renders month m, or the session's current month when m is nil.
func (s *SessionService) Calendar(_ context.Context, id uuid.UUID, m *calendar.Month) (CalendarView, error) {
	var cv CalendarView
	err := s.with(id, "Calendar", func(sess *session) error {
		month := sess.coord.Month()
		if m != nil {
			month = *m
		}
		cv = sess.calendar(month)
		return nil
	})
	return cv, err
}

// ShiftMonth moves the session's calendar by n months and renders it.
func (s *SessionService) ShiftMonth(_ context.Context, id uuid.UUID, n int) (CalendarView, error) {
	var cv CalendarView
	err := s.with(id, "ShiftMonth", func(sess *session) error {
		cv = sess.calendar(sess.coord.ShiftMonth(n))
		return nil
	})
	return cv, err
}

// SetCategory picks the vehicle category.
func (s *SessionService) SetCategory(_ context.Context, id uuid.UUID, cat domain.Category) (SessionView, error) {
	return s.mutate(id, "SetCategory", func(sess *session) error {
		sess.coord.SetCategory(cat)
		return nil
	})
}

// Submit builds the search query, records the location with its dates, and
// ends the session. It returns the navigation target for the results page.
// domain.ErrNotReady leaves the session untouched.
func (s *SessionService) Submit(ctx context.Context, id uuid.UUID) (domain.Navigation, error) {
	var nav domain.Navigation
	err := s.with(id, "Submit", func(sess *session) error {
		loc := sess.coord.State().Location
		q, err := sess.coord.Submit()
		if err != nil {
			return err
		}

		if loc != nil && q.StartDate != nil && q.EndDate != nil {
			entry := *loc
			if entry.Name == domain.AllCities {
				entry.Name = domain.AllCitiesLabel
			}
			s.history.Record(ctx, sess.clientID, entry, datesLabel(*q.StartDate, *q.EndDate))
		}

		s.remove(id)
		sess.shutdown()
		nav = domain.NavigationFor(q)
		return nil
	})
	if err != nil {
		return domain.Navigation{}, err
	}

	s.log.InfoContext(ctx, "search submitted", "session_id", id.String(), "target", nav.Pathname+nav.Search)
	return nav, nil
}

// Sweep closes every session idle for longer than the TTL and returns how
// many it closed.
func (s *SessionService) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.cfg.TTL).UnixNano()

	var expired []*session
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.lastSeen.Load() < cutoff {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.mu.Lock()
		sess.shutdown()
		sess.mu.Unlock()
	}
	if len(expired) > 0 {
		s.log.InfoContext(ctx, "expired idle search sessions", "count", len(expired))
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *SessionService) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Shutdown closes every session, cancels in-flight fetches and waits for
// their goroutines to exit.
func (s *SessionService) Shutdown() {
	s.stop()

	s.mu.Lock()
	all := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range all {
		sess.mu.Lock()
		sess.shutdown()
		sess.mu.Unlock()
	}
	s.wg.Wait()
}

// Len returns the number of live sessions.
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// with runs fn on the live session id while holding its lock.
// s.mu is never held while a session lock is being acquired.
func (s *SessionService) with(id uuid.UUID, op string, fn func(*session) error) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("service.SessionService.%s: %w", op, domain.ErrNotFound)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return fmt.Errorf("service.SessionService.%s: %w", op, domain.ErrNotFound)
	}
	sess.lastSeen.Store(s.now().UnixNano())

	if err := fn(sess); err != nil {
		return fmt.Errorf("service.SessionService.%s: %w", op, err)
	}
	return nil
}

// mutate is with followed by a fresh view of the session.
func (s *SessionService) mutate(id uuid.UUID, op string, fn func(*session) error) (SessionView, error) {
	var v SessionView
	err := s.with(id, op, func(sess *session) error {
		if err := fn(sess); err != nil {
			return err
		}
		v = sess.view()
		return nil
	})
	return v, err
}

func (s *SessionService) remove(id uuid.UUID) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	delete(s.sessions, id)
	return sess
}

// shutdown must be called with sess.mu held.
func (sess *session) shutdown() {
	if sess.closed {
		return
	}
	sess.closed = true
	sess.cancel()
	sess.catalog.Invalidate()
}

// view must be called with sess.mu held.
func (sess *session) view() SessionView {
	st := sess.coord.State()
	v := SessionView{
		ID:            sess.id,
		ClientID:      sess.clientID,
		Variant:       sess.coord.Variant(),
		Tabs:          sess.coord.Tabs(),
		State:         st,
		SelectingEnd:  sess.coord.SelectingEnd(),
		Completion:    sess.coord.Completion(),
		Ready:         sess.coord.Ready(),
		Month:         sess.coord.Month(),
		Today:         sess.coord.Today(),
		CitiesLoading: sess.catalog.Loading(),
		Recent:        append([]domain.RecentLocation{}, sess.recent...),
	}
	if n, ok := st.DateRange.DayCount(); ok {
		v.DayCount = n
	}
	return v
}

func (sess *session) calendar(m calendar.Month) CalendarView {
	today := sess.coord.Today()
	return CalendarView{
		Month:    m,
		Today:    today,
		Weekdays: calendar.WeekdayHeaders,
		Cells:    sess.coord.Calendar(m),
	}
}

// datesLabel renders a range the way the history list shows it: "Jan 10 - Jan 14".
func datesLabel(start, end calendar.Date) string {
	return start.Format("Jan 2") + " - " + end.Format("Jan 2")
}
