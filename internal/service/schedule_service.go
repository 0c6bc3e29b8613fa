package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/shiftboard/internal/docstore"
	"github.com/spec-kit/shiftboard/internal/domain"
	"github.com/spec-kit/shiftboard/internal/events"
	"github.com/spec-kit/shiftboard/internal/observability"
	"github.com/spec-kit/shiftboard/internal/repository"
	"github.com/spec-kit/shiftboard/internal/roster"
	"github.com/spec-kit/shiftboard/internal/schedule"
	apperrors "github.com/spec-kit/shiftboard/pkg/util/errorutil"
)

// ScheduleService holds the open editor sessions and reads persisted days.
type ScheduleService struct {
	schedules  repository.DayScheduleRepository
	roster     roster.Reader
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger

	now      func() time.Time
	mu       sync.Mutex
	sessions map[string]*editorSession
}

// ScheduleDependencies bundles collaborators for the schedule service.
type ScheduleDependencies struct {
	ScheduleRepo repository.DayScheduleRepository
	Roster       roster.Reader
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

type editorSession struct {
	mu       sync.Mutex
	id       string
	ownerID  string
	openedAt time.Time
	editor   *schedule.Editor
	closed   bool

	// touchedAt is guarded by ScheduleService.mu.
	touchedAt time.Time
}

// EditorView is the state of one session as shown to the editor UI.
type EditorView struct {
	SessionID string
	DateKey   string
	Queue     []domain.ExternalID
	Partition schedule.Partition
}

// NewScheduleService constructs the service.
func NewScheduleService(deps ScheduleDependencies) *ScheduleService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		schedules:  deps.ScheduleRepo,
		roster:     deps.Roster,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*editorSession),
	}
}

// GetSchedule returns the persisted schedule of one day.
func (s *ScheduleService) GetSchedule(ctx context.Context, dateKey string) (*domain.DaySchedule, error) {
	if _, err := domain.ParseDateKey(dateKey); err != nil {
		return nil, apperrors.NewValidationError("invalid date", map[string]any{"date": dateKey})
	}
	sched, err := s.schedules.GetByDate(ctx, dateKey)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, apperrors.NewNotFound("day schedule", map[string]any{"date": dateKey})
		}
		return nil, apperrors.NewPersistenceError("load day schedule", err)
	}
	return sched, nil
}

// OpenEditor starts an editor session for dateKey, seeded with the persisted
// queue of that day or an empty one.
func (s *ScheduleService) OpenEditor(ctx context.Context, actor *domain.User, dateKey string) (*EditorView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := domain.ParseDateKey(dateKey); err != nil {
		return nil, apperrors.NewValidationError("invalid date", map[string]any{"date": dateKey})
	}

	var persisted []domain.ExternalID
	existing, err := s.schedules.GetByDate(ctx, dateKey)
	switch {
	case err == nil:
		persisted = existing.Members
	case errors.Is(err, docstore.ErrNotFound):
	default:
		return nil, apperrors.NewPersistenceError("load day schedule", err)
	}

	editor := schedule.NewEditor(s.roster)
	if err := editor.Open(dateKey, persisted); err != nil {
		return nil, mapEditorError(err)
	}
	openedAt := s.now().UTC()
	sess := &editorSession{
		id:        uuid.NewString(),
		ownerID:   actor.ID,
		openedAt:  openedAt,
		editor:    editor,
		touchedAt: openedAt,
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info("editor opened", zap.String("session_id", sess.id), zap.String("date", dateKey), zap.String("user_id", actor.ID))
	return sess.view(), nil
}

// View returns the current state of a session.
func (s *ScheduleService) View(actor *domain.User, sessionID string) (*EditorView, error) {
	var view *EditorView
	err := s.withSession(actor, sessionID, func(sess *editorSession) error {
		view = sess.view()
		return nil
	})
	return view, err
}

// AddMember appends an agent to the session queue.
func (s *ScheduleService) AddMember(actor *domain.User, sessionID string, raw any) (*EditorView, error) {
	var view *EditorView
	err := s.withSession(actor, sessionID, func(sess *editorSession) error {
		if err := sess.editor.AddMember(raw); err != nil {
			return mapEditorError(err)
		}
		view = sess.view()
		return nil
	})
	return view, err
}

// RemoveMember drops the queue entry at index (0-based).
func (s *ScheduleService) RemoveMember(actor *domain.User, sessionID string, index int) (*EditorView, error) {
	var view *EditorView
	err := s.withSession(actor, sessionID, func(sess *editorSession) error {
		if err := sess.editor.RemoveMember(index); err != nil {
			return mapEditorError(err)
		}
		view = sess.view()
		return nil
	})
	return view, err
}

// Save persists the session queue and ends the session. A failed write keeps
// the session open so the user can retry.
func (s *ScheduleService) Save(ctx context.Context, actor *domain.User, sessionID string) (*domain.DaySchedule, error) {
	var saved *domain.DaySchedule
	err := s.withSession(actor, sessionID, func(sess *editorSession) error {
		sched, err := sess.editor.Save(ctx, s.schedules)
		s.metrics.RecordScheduleSave(err)
		if err != nil {
			if errors.Is(err, schedule.ErrEditorClosed) {
				return mapEditorError(err)
			}
			s.logger.Error("save day schedule failed", zap.String("session_id", sess.id), zap.Error(err))
			return apperrors.NewPersistenceError("save day schedule", err)
		}
		sess.closed = true
		saved = sched
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.drop(sessionID)
	s.logger.Info("day schedule saved", zap.String("date", saved.DateKey), zap.Int("members", len(saved.Members)))
	publish(ctx, s.dispatcher, s.logger, actor, events.EventScheduleSaved, events.ScheduleSavedPayload{
		DateKey: saved.DateKey,
		Members: saved.Members,
	})
	return saved, nil
}

// Cancel discards the session without writing.
func (s *ScheduleService) Cancel(actor *domain.User, sessionID string) error {
	err := s.withSession(actor, sessionID, func(sess *editorSession) error {
		sess.editor.Cancel()
		sess.closed = true
		return nil
	})
	if err != nil {
		return err
	}
	s.drop(sessionID)
	return nil
}

// ExpireSessions drops sessions idle since before cutoff and returns how many.
// Any access through the session, including a read, counts as activity.
func (s *ScheduleService) ExpireSessions(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if sess.touchedAt.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *ScheduleService) withSession(actor *domain.User, sessionID string, fn func(*editorSession) error) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok && sess.ownerID == actor.ID {
		sess.touchedAt = s.now().UTC()
	}
	s.mu.Unlock()
	if !ok {
		return apperrors.NewNotFound("editor session", map[string]any{"session_id": sessionID})
	}
	if sess.ownerID != actor.ID {
		return apperrors.NewForbidden("editor session belongs to another user")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return apperrors.NewNotFound("editor session", map[string]any{"session_id": sessionID})
	}
	return fn(sess)
}

func (s *ScheduleService) drop(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func (sess *editorSession) view() *EditorView {
	day, _ := sess.editor.SelectedDay()
	return &EditorView{
		SessionID: sess.id,
		DateKey:   day,
		Queue:     sess.editor.Queue(),
		Partition: sess.editor.Partition(),
	}
}

func mapEditorError(err error) error {
	switch {
	case errors.Is(err, schedule.ErrEditorClosed), errors.Is(err, schedule.ErrEditorOpen):
		return apperrors.NewConflict(err.Error(), nil)
	case errors.Is(err, schedule.ErrAlreadyQueued):
		return apperrors.NewConflict(err.Error(), nil)
	case errors.Is(err, schedule.ErrMissingMemberID),
		errors.Is(err, schedule.ErrUnknownMember),
		errors.Is(err, schedule.ErrIndexOutOfBounds):
		return apperrors.NewValidationError(err.Error(), nil)
	default:
		return apperrors.NewInternalError(err)
	}
}
