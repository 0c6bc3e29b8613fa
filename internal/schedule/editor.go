// Package schedule implements the day queue editor: an ordered list of agents
// for one calendar day, edited in memory and saved as a full replace.
package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/shiftboard/internal/domain"
	"github.com/spec-kit/shiftboard/internal/roster"
)

var (
	ErrEditorClosed     = errors.New("no day selected")
	ErrEditorOpen       = errors.New("editor already open")
	ErrMissingMemberID  = errors.New("member id required")
	ErrUnknownMember    = errors.New("member not in roster")
	ErrAlreadyQueued    = errors.New("member already queued")
	ErrIndexOutOfBounds = errors.New("queue index out of range")
)

// Writer persists a day schedule, replacing whatever was stored for its date.
type Writer interface {
	Replace(ctx context.Context, schedule *domain.DaySchedule) error
}

// QueuedMember is one entry of the queued view. Position is 1-based.
type QueuedMember struct {
	Position   int
	ExternalID domain.ExternalID
	Label      string
	Orphaned   bool
}

// Partition splits the roster into queued and available agents.
type Partition struct {
	Queued    []QueuedMember
	Available []domain.Agent
}

// Editor is the Closed/Open state machine for one day's queue. It is not safe
// for concurrent use; callers serialize access.
type Editor struct {
	roster roster.Reader
	now    func() time.Time

	open        bool
	selectedDay string
	queue       []domain.ExternalID
}

// NewEditor creates a closed editor reading names from r.
func NewEditor(r roster.Reader) *Editor {
	return &Editor{roster: r, now: time.Now}
}

// Open selects dateKey and seeds the queue with a normalized copy of persisted.
func (e *Editor) Open(dateKey string, persisted []domain.ExternalID) error {
	if e.open {
		return ErrEditorOpen
	}
	if _, err := domain.ParseDateKey(dateKey); err != nil {
		return err
	}
	e.selectedDay = dateKey
	e.queue = domain.NormalizeExternalIDs(persisted)
	e.open = true
	return nil
}

// IsOpen reports whether a day is selected.
func (e *Editor) IsOpen() bool {
	return e.open
}

// SelectedDay returns the date key being edited.
func (e *Editor) SelectedDay() (string, bool) {
	return e.selectedDay, e.open
}

// Queue returns a copy of the current queue.
func (e *Editor) Queue() []domain.ExternalID {
	out := make([]domain.ExternalID, len(e.queue))
	copy(out, e.queue)
	return out
}

// AddMember appends a roster agent to the end of the queue.
func (e *Editor) AddMember(raw any) error {
	if !e.open {
		return ErrEditorClosed
	}
	id := domain.NewExternalID(raw)
	if id == "" {
		return ErrMissingMemberID
	}
	if _, ok := e.roster.Lookup(id); !ok {
		return ErrUnknownMember
	}
	for _, queued := range e.queue {
		if queued == id {
			return ErrAlreadyQueued
		}
	}
	e.queue = append(e.queue, id)
	return nil
}

// RemoveMember deletes the entry at index, keeping the order of the rest.
func (e *Editor) RemoveMember(index int) error {
	if !e.open {
		return ErrEditorClosed
	}
	if index < 0 || index >= len(e.queue) {
		return ErrIndexOutOfBounds
	}
	e.queue = append(e.queue[:index:index], e.queue[index+1:]...)
	return nil
}

// Partition resolves the queue against the roster. Every roster agent lands in
// exactly one side; queue entries without a roster match are queued and orphaned.
func (e *Editor) Partition() Partition {
	queuedSet := make(map[domain.ExternalID]struct{}, len(e.queue))
	p := Partition{
		Queued:    make([]QueuedMember, 0, len(e.queue)),
		Available: []domain.Agent{},
	}
	for i, id := range e.queue {
		queuedSet[id] = struct{}{}
		member := QueuedMember{Position: i + 1, ExternalID: id}
		if agent, ok := e.roster.Lookup(id); ok {
			member.Label = agent.Name
		} else {
			member.Label = domain.UnknownMemberLabel(id)
			member.Orphaned = true
		}
		p.Queued = append(p.Queued, member)
	}
	for _, agent := range e.roster.Snapshot() {
		if _, queued := queuedSet[agent.ExternalID]; !queued {
			p.Available = append(p.Available, agent)
		}
	}
	return p
}

// Save writes the queue verbatim with a -1 rotation pointer and closes the
// editor. On a write failure the editor stays open with its queue intact.
func (e *Editor) Save(ctx context.Context, w Writer) (*domain.DaySchedule, error) {
	if !e.open {
		return nil, ErrEditorClosed
	}
	schedule := &domain.DaySchedule{
		DateKey:         e.selectedDay,
		Members:         e.Queue(),
		RotationPointer: domain.NoRotationPointer,
		UpdatedAt:       e.now().UTC(),
	}
	if err := w.Replace(ctx, schedule); err != nil {
		return nil, err
	}
	e.Cancel()
	return schedule, nil
}

// Cancel discards the in-progress queue and closes the editor.
func (e *Editor) Cancel() {
	e.open = false
	e.selectedDay = ""
	e.queue = nil
}
