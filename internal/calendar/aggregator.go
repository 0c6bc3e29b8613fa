// Package calendar builds the month grid of day schedules with display names.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/shiftboard/internal/domain"
	"github.com/spec-kit/shiftboard/internal/roster"
)

// ScheduleLister bulk-loads every persisted day schedule.
type ScheduleLister interface {
	ListAll(ctx context.Context) ([]domain.DaySchedule, error)
}

// DaySummary is the preview of one calendar day.
type DaySummary struct {
	Day           int
	DateKey       string
	HasAssignment bool
	Names         []string
}

// MonthView is the grid for one month. Treat it as read-only: views are cached.
type MonthView struct {
	Year          int
	Month         time.Month
	DaysInMonth   int
	LeadingBlanks int
	Days          []DaySummary
}

// Cell is a grid slot: either a blank before day 1 or a day.
type Cell struct {
	Blank bool
	Day   *DaySummary
}

// Cells returns LeadingBlanks blank cells followed by one cell per day.
func (v *MonthView) Cells() []Cell {
	cells := make([]Cell, 0, v.LeadingBlanks+len(v.Days))
	for i := 0; i < v.LeadingBlanks; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	for i := range v.Days {
		cells = append(cells, Cell{Day: &v.Days[i]})
	}
	return cells
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekdayOffset is the weekday of day 1 with Sunday as 0.
func FirstWeekdayOffset(year int, month time.Month) int {
	return int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// Aggregator resolves day schedules through the roster into month views.
type Aggregator struct {
	schedules ScheduleLister
	roster    roster.Reader

	mu         sync.Mutex
	generation uint64
	cache      map[string]*MonthView
}

// NewAggregator constructs the aggregator.
func NewAggregator(schedules ScheduleLister, r roster.Reader) *Aggregator {
	return &Aggregator{
		schedules: schedules,
		roster:    r,
		cache:     make(map[string]*MonthView),
	}
}

// Month builds (or returns the cached) view for year/month. A store failure
// returns no view at all.
func (a *Aggregator) Month(ctx context.Context, year int, month time.Month) (*MonthView, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	prefix := domain.MonthPrefix(year, month)

	a.mu.Lock()
	if view, ok := a.cache[prefix]; ok {
		a.mu.Unlock()
		return view, nil
	}
	gen := a.generation
	a.mu.Unlock()

	all, err := a.schedules.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	view := a.build(year, month, prefix, all)

	a.mu.Lock()
	if a.generation == gen {
		a.cache[prefix] = view
	}
	a.mu.Unlock()
	return view, nil
}

func (a *Aggregator) build(year int, month time.Month, prefix string, all []domain.DaySchedule) *MonthView {
	byDay := make(map[string]domain.DaySchedule)
	for _, s := range all {
		if strings.HasPrefix(s.DateKey, prefix+"-") {
			byDay[s.DateKey] = s
		}
	}

	days := DaysIn(year, month)
	view := &MonthView{
		Year:          year,
		Month:         month,
		DaysInMonth:   days,
		LeadingBlanks: FirstWeekdayOffset(year, month),
		Days:          make([]DaySummary, 0, days),
	}
	for d := 1; d <= days; d++ {
		key := domain.DateKey(year, month, d)
		summary := DaySummary{Day: d, DateKey: key, Names: []string{}}
		if s, ok := byDay[key]; ok {
			for _, raw := range s.Members {
				summary.Names = append(summary.Names, a.displayName(raw))
			}
		}
		summary.HasAssignment = len(summary.Names) > 0
		view.Days = append(view.Days, summary)
	}
	return view
}

func (a *Aggregator) displayName(raw domain.ExternalID) string {
	id := domain.NewExternalID(raw)
	agent, ok := a.roster.Lookup(id)
	if !ok {
		return domain.UnknownMemberLabel(id)
	}
	if first := agent.FirstName(); first != "" {
		return first
	}
	return domain.UnknownMemberLabel(id)
}

// Invalidate drops the cached view of the month containing dateKey.
func (a *Aggregator) Invalidate(dateKey string) {
	if len(dateKey) < len("2006-01") {
		a.InvalidateAll()
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	delete(a.cache, dateKey[:len("2006-01")])
}

// InvalidateAll drops every cached month.
func (a *Aggregator) InvalidateAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	a.cache = make(map[string]*MonthView)
}
