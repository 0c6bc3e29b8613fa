package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/shiftboard/internal/calendar"
	"github.com/spec-kit/shiftboard/internal/events"
	apperrors "github.com/spec-kit/shiftboard/pkg/util/errorutil"
)

// CalendarService serves month views and drops cached months on change events.
type CalendarService struct {
	aggregator *calendar.Aggregator
	logger     *zap.Logger
}

// NewCalendarService constructs the service.
func NewCalendarService(aggregator *calendar.Aggregator, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{aggregator: aggregator, logger: logger}
}

// RegisterHandlers subscribes cache invalidation to schedule and roster events.
func (s *CalendarService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventScheduleSaved, func(_ context.Context, evt events.Event) error {
		if payload, ok := evt.Payload.(events.ScheduleSavedPayload); ok {
			s.aggregator.Invalidate(payload.DateKey)
			return nil
		}
		s.aggregator.InvalidateAll()
		return nil
	})
	dispatcher.Subscribe(events.EventRosterChanged, func(context.Context, events.Event) error {
		s.aggregator.InvalidateAll()
		return nil
	})
}

// Month returns the view of one month.
func (s *CalendarService) Month(ctx context.Context, year, month int) (*calendar.MonthView, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.NewValidationError("month must be between 1 and 12", map[string]any{"month": month})
	}
	if year < 1 || year > 9999 {
		return nil, apperrors.NewValidationError("invalid year", map[string]any{"year": year})
	}
	view, err := s.aggregator.Month(ctx, year, time.Month(month))
	if err != nil {
		s.logger.Error("calendar month failed", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		return nil, apperrors.NewPersistenceError("load calendar", err)
	}
	return view, nil
}
