package schedule

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shiftboard/internal/domain"
)

type staticRoster []domain.Agent

func (r staticRoster) Lookup(id domain.ExternalID) (domain.Agent, bool) {
	for _, a := range r {
		if a.ExternalID == id {
			return a, true
		}
	}
	return domain.Agent{}, false
}

func (r staticRoster) Snapshot() []domain.Agent {
	out := make([]domain.Agent, len(r))
	copy(out, r)
	return out
}

type memoryWriter struct {
	saved map[string]domain.DaySchedule
	err   error
}

func (w *memoryWriter) Replace(ctx context.Context, s *domain.DaySchedule) error {
	if w.err != nil {
		return w.err
	}
	if w.saved == nil {
		w.saved = make(map[string]domain.DaySchedule)
	}
	w.saved[s.DateKey] = *s
	return nil
}

func agentNames(agents []domain.Agent) []string {
	out := []string{}
	for _, a := range agents {
		out = append(out, a.Name)
	}
	return out
}

func TestEditorScenarioEmptyDay(t *testing.T) {
	r := staticRoster{{ID: "k1", Name: "Ana", ExternalID: "1"}}
	w := &memoryWriter{}
	e := NewEditor(r)
	e.now = func() time.Time { return time.Date(2026, 1, 4, 9, 0, 0, 0, time.UTC) }

	require.NoError(t, e.Open("2026-01-05", nil))
	p := e.Partition()
	assert.Empty(t, p.Queued)
	assert.Equal(t, []string{"Ana"}, agentNames(p.Available))

	require.NoError(t, e.AddMember("1"))
	assert.Equal(t, []domain.ExternalID{"1"}, e.Queue())

	saved, err := e.Save(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, []domain.ExternalID{"1"}, saved.Members)
	assert.Equal(t, -1, saved.RotationPointer)
	assert.False(t, e.IsOpen())

	persisted := w.saved["2026-01-05"]
	require.NoError(t, e.Open("2026-01-05", persisted.Members))
	p = e.Partition()
	require.Len(t, p.Queued, 1)
	assert.Equal(t, "Ana", p.Queued[0].Label)
	assert.Empty(t, p.Available)
}

func TestEditorQueuedOrderAndPositions(t *testing.T) {
	r := staticRoster{
		{Name: "Ana", ExternalID: "1"},
		{Name: "Bia", ExternalID: "2"},
	}
	e := NewEditor(r)
	require.NoError(t, e.Open("2026-01-06", []domain.ExternalID{"2", "1"}))

	p := e.Partition()
	require.Len(t, p.Queued, 2)
	assert.Equal(t, QueuedMember{Position: 1, ExternalID: "2", Label: "Bia"}, p.Queued[0])
	assert.Equal(t, QueuedMember{Position: 2, ExternalID: "1", Label: "Ana"}, p.Queued[1])
}

func TestEditorOrphanedMember(t *testing.T) {
	r := staticRoster{{Name: "Ana", ExternalID: "1"}}
	e := NewEditor(r)
	require.NoError(t, e.Open("2026-01-07", []domain.ExternalID{"99", "1"}))

	p := e.Partition()
	require.Len(t, p.Queued, 2)
	assert.Equal(t, "ID: 99", p.Queued[0].Label)
	assert.True(t, p.Queued[0].Orphaned)
	assert.Empty(t, p.Available)

	require.NoError(t, e.RemoveMember(0))
	assert.Equal(t, []domain.ExternalID{"1"}, e.Queue())
}

func TestEditorOpenCopiesAndNormalizes(t *testing.T) {
	e := NewEditor(staticRoster{})
	source := []domain.ExternalID{" 3 ", "4"}
	require.NoError(t, e.Open("2026-01-08", source))
	require.NoError(t, e.RemoveMember(0))

	assert.Equal(t, []domain.ExternalID{" 3 ", "4"}, source)
	assert.Equal(t, []domain.ExternalID{"4"}, e.Queue())
}

func TestEditorRejections(t *testing.T) {
	r := staticRoster{{Name: "Ana", ExternalID: "1"}}
	e := NewEditor(r)

	assert.ErrorIs(t, e.AddMember("1"), ErrEditorClosed)
	assert.ErrorIs(t, e.RemoveMember(0), ErrEditorClosed)
	_, err := e.Save(context.Background(), &memoryWriter{})
	assert.ErrorIs(t, err, ErrEditorClosed)

	assert.Error(t, e.Open("2026-13-01", nil))
	assert.False(t, e.IsOpen())

	require.NoError(t, e.Open("2026-01-05", nil))
	assert.ErrorIs(t, e.Open("2026-01-06", nil), ErrEditorOpen)
	assert.ErrorIs(t, e.AddMember("  "), ErrMissingMemberID)
	assert.ErrorIs(t, e.AddMember("2"), ErrUnknownMember)
	require.NoError(t, e.AddMember(1))
	assert.ErrorIs(t, e.AddMember(" 1 "), ErrAlreadyQueued)
	assert.ErrorIs(t, e.RemoveMember(1), ErrIndexOutOfBounds)
	assert.ErrorIs(t, e.RemoveMember(-1), ErrIndexOutOfBounds)
	assert.Equal(t, []domain.ExternalID{"1"}, e.Queue())
}

func TestEditorSaveFailureKeepsState(t *testing.T) {
	r := staticRoster{{Name: "Ana", ExternalID: "1"}}
	e := NewEditor(r)
	require.NoError(t, e.Open("2026-01-05", nil))
	require.NoError(t, e.AddMember("1"))

	w := &memoryWriter{err: errors.New("unavailable")}
	_, err := e.Save(context.Background(), w)
	require.Error(t, err)
	assert.True(t, e.IsOpen())
	assert.Equal(t, []domain.ExternalID{"1"}, e.Queue())

	w.err = nil
	saved, err := e.Save(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, []domain.ExternalID{"1"}, saved.Members)
}

func TestEditorRoundTripWithoutEdits(t *testing.T) {
	w := &memoryWriter{}
	e := NewEditor(staticRoster{})
	original := []domain.ExternalID{"5", "3", "9"}
	require.NoError(t, e.Open("2026-02-01", original))
	_, err := e.Save(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, original, w.saved["2026-02-01"].Members)
}

func TestEditorRandomEditsMatchModelAndPartition(t *testing.T) {
	r := staticRoster{}
	for i := 1; i <= 8; i++ {
		id := domain.NewExternalID(i)
		r = append(r, domain.Agent{Name: "Agent " + string(id), ExternalID: id})
	}
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		e := NewEditor(r)
		require.NoError(t, e.Open("2026-03-10", nil))
		var model []domain.ExternalID

		for step := 0; step < 20; step++ {
			if rng.Intn(3) > 0 {
				id := r[rng.Intn(len(r))].ExternalID
				if e.AddMember(id) == nil {
					model = append(model, id)
				}
			} else if len(model) > 0 {
				idx := rng.Intn(len(model))
				require.NoError(t, e.RemoveMember(idx))
				model = append(model[:idx], model[idx+1:]...)
			}

			p := e.Partition()
			seen := map[domain.ExternalID]int{}
			for _, q := range p.Queued {
				seen[q.ExternalID]++
			}
			for _, a := range p.Available {
				seen[a.ExternalID]++
			}
			assert.Len(t, seen, len(r))
			for id, n := range seen {
				assert.Equal(t, 1, n, "agent %s appears %d times", id, n)
			}
		}

		w := &memoryWriter{}
		saved, err := e.Save(context.Background(), w)
		require.NoError(t, err)
		if len(model) == 0 {
			assert.Empty(t, saved.Members)
		} else {
			assert.Equal(t, model, saved.Members)
		}
	}
}
