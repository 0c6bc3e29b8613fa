// Package leads groups lead records per assigned agent over a date range.
package leads

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spec-kit/shiftboard/internal/domain"
	"github.com/spec-kit/shiftboard/internal/repository"
	"github.com/spec-kit/shiftboard/internal/roster"
)

// TimestampLayout renders lead timestamps for people.
const TimestampLayout = "02/01/2006 15:04:05"

var ErrInvalidRange = errors.New("invalid date range")

// LeadLister reads lead records ordered newest first.
type LeadLister interface {
	List(ctx context.Context, filter repository.LeadFilter) ([]domain.LeadRecord, error)
}

// Query selects the records to summarize. Empty dates default to today; a
// single bound is used for both ends.
type Query struct {
	StartDateKey string
	EndDateKey   string
	MemberID     domain.ExternalID
}

// Group is the lead count of one assigned member.
type Group struct {
	MemberID domain.ExternalID
	Name     string
	Orphaned bool
	Count    int
	Records  []domain.LeadRecord
}

// Report is the grouped summary, sorted by count descending. Ties keep the
// order in which groups first appeared.
type Report struct {
	StartDateKey string
	EndDateKey   string
	Total        int
	Groups       []Group
	loc          *time.Location
}

// FormattedRecord is a raw lead plus its human readable timestamp.
type FormattedRecord struct {
	domain.LeadRecord
	FormattedTimestamp string
}

// Aggregator builds lead summaries.
type Aggregator struct {
	leads  LeadLister
	roster roster.Reader
	loc    *time.Location
	now    func() time.Time
}

// NewAggregator constructs the aggregator. loc decides what "today" is and how
// timestamps are rendered.
func NewAggregator(leads LeadLister, r roster.Reader, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{leads: leads, roster: r, loc: loc, now: time.Now}
}

func (a *Aggregator) resolveRange(q Query) (string, string, error) {
	start, end := q.StartDateKey, q.EndDateKey
	if start == "" && end == "" {
		today := a.now().In(a.loc).Format(domain.DateKeyLayout)
		return today, today, nil
	}
	if start == "" {
		start = end
	}
	if end == "" {
		end = start
	}
	if _, err := domain.ParseDateKey(start); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	if _, err := domain.ParseDateKey(end); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	if start > end {
		return "", "", fmt.Errorf("%w: start %s after end %s", ErrInvalidRange, start, end)
	}
	return start, end, nil
}

// Summarize loads the records in range and groups them by normalized member id.
func (a *Aggregator) Summarize(ctx context.Context, q Query) (*Report, error) {
	start, end, err := a.resolveRange(q)
	if err != nil {
		return nil, err
	}
	records, err := a.leads.List(ctx, repository.LeadFilter{StartDateKey: start, EndDateKey: end})
	if err != nil {
		return nil, err
	}

	memberFilter := domain.NewExternalID(q.MemberID)
	report := &Report{StartDateKey: start, EndDateKey: end, Groups: []Group{}, loc: a.loc}
	positions := make(map[domain.ExternalID]int)

	for _, rec := range records {
		rec.AssignedMemberID = domain.NewExternalID(rec.AssignedMemberID)
		if memberFilter != "" && rec.AssignedMemberID != memberFilter {
			continue
		}
		i, ok := positions[rec.AssignedMemberID]
		if !ok {
			i = len(report.Groups)
			positions[rec.AssignedMemberID] = i
			report.Groups = append(report.Groups, a.newGroup(rec.AssignedMemberID))
		}
		report.Groups[i].Count++
		report.Groups[i].Records = append(report.Groups[i].Records, rec)
		report.Total++
	}

	sort.SliceStable(report.Groups, func(i, j int) bool {
		return report.Groups[i].Count > report.Groups[j].Count
	})
	return report, nil
}

func (a *Aggregator) newGroup(id domain.ExternalID) Group {
	g := Group{MemberID: id}
	if agent, ok := a.roster.Lookup(id); ok {
		g.Name = agent.Name
	} else {
		g.Name = domain.UnknownMemberLabel(id)
		g.Orphaned = true
	}
	return g
}

// DrillDown returns the raw records of one member with formatted timestamps.
func (r *Report) DrillDown(memberID domain.ExternalID) ([]FormattedRecord, bool) {
	id := domain.NewExternalID(memberID)
	loc := r.loc
	if loc == nil {
		loc = time.UTC
	}
	for _, g := range r.Groups {
		if g.MemberID != id {
			continue
		}
		out := make([]FormattedRecord, 0, len(g.Records))
		for _, rec := range g.Records {
			out = append(out, FormattedRecord{
				LeadRecord:         rec,
				FormattedTimestamp: rec.Timestamp.In(loc).Format(TimestampLayout),
			})
		}
		return out, true
	}
	return nil, false
}
