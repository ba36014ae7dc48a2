// Package search implements the search and selection coordinator: the tab
// state machine that walks a user through City → Dates → Vehicle, and the
// query builder that turns a finished selection into a SearchQuery.
//
// A Coordinator is owned by one search session and is not safe for
// concurrent use; the session layer serialises access to it.
package search

import (
	"fmt"

	"github.com/pkordes/riderent/backend/internal/calendar"
	"github.com/pkordes/riderent/backend/internal/domain"
)

// Tab is one step of the search flow.
type Tab string

const (
	TabCity    Tab = "city"
	TabDates   Tab = "dates"
	TabVehicle Tab = "vehicle"
)

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(s); t {
	case TabCity, TabDates, TabVehicle:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown tab %q", domain.ErrValidation, s)
	}
}

// SelectionState is everything the user has picked so far.
// City is nil until a city is chosen; domain.AllCities ("") is a valid choice.
type SelectionState struct {
	ActiveTab Tab
	City      *string
	Location  *domain.Location
	DateRange calendar.Range
	Category  domain.Category
}

// Completion marks which tabs show a check mark.
type Completion struct {
	City    bool
	Dates   bool
	Vehicle bool
}

// Coordinator owns the SelectionState of one search session.
type Coordinator struct {
	variant  domain.SearchVariant
	today    func() calendar.Date
	state    SelectionState
	selector calendar.Selector
	month    calendar.Month
}

// NewCoordinator returns a coordinator in its initial state: City tab active,
// nothing selected, default category, calendar showing the current month.
// today is consulted on every date operation so a long-lived session follows
// the wall clock.
func NewCoordinator(variant domain.SearchVariant, today func() calendar.Date) *Coordinator {
	c := &Coordinator{variant: variant, today: today}
	c.Reset()
	return c
}

// Reset discards every selection and returns to the initial state.
func (c *Coordinator) Reset() {
	c.selector.Reset()
	c.state = SelectionState{ActiveTab: TabCity, Category: domain.DefaultCategory}
	c.month = calendar.MonthOf(c.today())
}

// Variant returns the query contract this coordinator builds for.
func (c *Coordinator) Variant() domain.SearchVariant { return c.variant }

// Tabs returns the tabs offered in this variant, in order.
func (c *Coordinator) Tabs() []Tab {
	if c.variant == domain.VariantCityOnly {
		return []Tab{TabCity, TabVehicle}
	}
	return []Tab{TabCity, TabDates, TabVehicle}
}

// State returns a snapshot of the current selection. The snapshot shares no
// pointers with the coordinator.
func (c *Coordinator) State() SelectionState {
	s := c.state
	if s.City != nil {
		city := *s.City
		s.City = &city
	}
	if s.Location != nil {
		loc := *s.Location
		s.Location = &loc
	}
	s.DateRange = c.selector.Range()
	return s
}

// SelectingEnd reports whether the next calendar click picks the end date.
func (c *Coordinator) SelectingEnd() bool { return c.selector.SelectingEnd() }

// Completion reports per-tab completion. The vehicle tab is always complete
// because the category has a default.
func (c *Coordinator) Completion() Completion {
	return Completion{
		City:    c.state.City != nil,
		Dates:   c.selector.Range().Complete(),
		Vehicle: true,
	}
}

// Ready is the readiness predicate gating the Search action: a city is
// chosen and, in the dated variant, both dates are set.
func (c *Coordinator) Ready() bool {
	if c.state.City == nil {
		return false
	}
	if c.variant == domain.VariantDated {
		return c.selector.Range().Complete()
	}
	return true
}

// SwitchTab activates tab without touching any selection.
func (c *Coordinator) SwitchTab(tab Tab) error {
	for _, t := range c.Tabs() {
		if t == tab {
			c.state.ActiveTab = tab
			return nil
		}
	}
	return fmt.Errorf("search.Coordinator.SwitchTab: %w: tab %q is not offered in the %s variant",
		domain.ErrValidation, tab, c.variant)
}

// SelectCity picks a catalog city (or domain.AllCities) and advances to the
// next tab.
func (c *Coordinator) SelectCity(city string) {
	c.SelectLocation(domain.Location{Name: city})
}

// SelectLocation picks a location and advances to the next tab: Dates in the
// dated variant, Vehicle in the city-only variant.
func (c *Coordinator) SelectLocation(loc domain.Location) {
	name := loc.Name
	c.state.City = &name
	c.state.Location = &loc
	c.advanceFrom(TabCity)
}

// ClickDate applies one calendar click (see calendar.Selector.Click) and
// advances to the Vehicle tab when the click commits the range.
// It reports whether the range was committed.
func (c *Coordinator) ClickDate(d calendar.Date) (bool, error) {
	if err := c.requireDates("ClickDate"); err != nil {
		return false, err
	}
	completed := c.selector.Click(d, c.today())
	if completed {
		c.advanceFrom(TabDates)
	}
	return completed, nil
}

// QuickSelect sets an n-day range starting today and advances to the
// Vehicle tab.
func (c *Coordinator) QuickSelect(n int) error {
	if err := c.requireDates("QuickSelect"); err != nil {
		return err
	}
	if err := c.selector.QuickSelect(n, c.today()); err != nil {
		return fmt.Errorf("search.Coordinator.QuickSelect: %w: %v", domain.ErrValidation, err)
	}
	c.advanceFrom(TabDates)
	return nil
}

// SetCategory picks the vehicle category. It does not change tabs.
func (c *Coordinator) SetCategory(cat domain.Category) {
	c.state.Category = cat
}

// Month returns the month the calendar is showing.
func (c *Coordinator) Month() calendar.Month { return c.month }

// ShiftMonth moves the calendar by n months. It never alters the range.
func (c *Coordinator) ShiftMonth(n int) calendar.Month {
	c.month = c.month.Add(n)
	return c.month
}

// Calendar returns the classified grid for m against today and the current range.
func (c *Coordinator) Calendar(m calendar.Month) []calendar.Cell {
	return calendar.Render(m, c.today(), c.selector.Range())
}

// Today returns the coordinator's current day.
func (c *Coordinator) Today() calendar.Date { return c.today() }

// Submit builds the SearchQuery for the current selection and resets the
// coordinator. It returns domain.ErrNotReady, changing nothing, when the
// readiness predicate does not hold.
func (c *Coordinator) Submit() (domain.SearchQuery, error) {
	if !c.Ready() {
		return domain.SearchQuery{}, fmt.Errorf("search.Coordinator.Submit: %w", domain.ErrNotReady)
	}

	q := domain.SearchQuery{City: *c.state.City, Category: c.state.Category}
	if loc := c.state.Location; loc != nil && loc.HasCoordinates() {
		q.Near = &domain.Coordinates{Lat: loc.Lat, Lng: loc.Lng}
	}
	if c.variant == domain.VariantDated {
		r := c.selector.Range()
		q.StartDate, q.EndDate = r.Start, r.End
	}

	c.Reset()
	return q, nil
}

func (c *Coordinator) requireDates(op string) error {
	if c.variant == domain.VariantCityOnly {
		return fmt.Errorf("search.Coordinator.%s: %w: dates are not part of the %s variant",
			op, domain.ErrValidation, c.variant)
	}
	return nil
}

// advanceFrom moves to the tab after from in this variant's tab order.
func (c *Coordinator) advanceFrom(from Tab) {
	tabs := c.Tabs()
	for i, t := range tabs {
		if t == from && i+1 < len(tabs) {
			c.state.ActiveTab = tabs[i+1]
			return
		}
	}
}
