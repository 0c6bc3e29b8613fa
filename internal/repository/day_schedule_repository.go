package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/shiftboard/internal/docstore"
	"github.com/spec-kit/shiftboard/internal/domain"
)

// DayScheduleRepository persists day schedules keyed by YYYY-MM-DD.
type DayScheduleRepository interface {
	// Replace overwrites the whole schedule stored at its date key.
	Replace(ctx context.Context, schedule *domain.DaySchedule) error
	GetByDate(ctx context.Context, dateKey string) (*domain.DaySchedule, error)
	ListAll(ctx context.Context) ([]domain.DaySchedule, error)
}

type dayScheduleRepository struct {
	store docstore.Store
}

// NewDayScheduleRepository instantiates the repository.
func NewDayScheduleRepository(store docstore.Store) DayScheduleRepository {
	return &dayScheduleRepository{store: store}
}

func (r *dayScheduleRepository) Replace(ctx context.Context, schedule *domain.DaySchedule) error {
	doc, err := docstore.Encode(schedule)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, docstore.CollectionDaySchedules, schedule.DateKey, doc)
}

func (r *dayScheduleRepository) GetByDate(ctx context.Context, dateKey string) (*domain.DaySchedule, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionDaySchedules, dateKey)
	if err != nil {
		return nil, err
	}
	return decodeSchedule(dateKey, doc)
}

func (r *dayScheduleRepository) ListAll(ctx context.Context) ([]domain.DaySchedule, error) {
	recs, err := r.store.GetAll(ctx, docstore.CollectionDaySchedules)
	if err != nil {
		return nil, err
	}
	result := make([]domain.DaySchedule, 0, len(recs))
	for _, rec := range recs {
		schedule, err := decodeSchedule(rec.Key, rec.Data)
		if err != nil {
			return nil, err
		}
		result = append(result, *schedule)
	}
	return result, nil
}

func decodeSchedule(dateKey string, doc docstore.Document) (*domain.DaySchedule, error) {
	var schedule domain.DaySchedule
	if err := docstore.Decode(doc, &schedule); err != nil {
		return nil, fmt.Errorf("decode day schedule %s: %w", dateKey, err)
	}
	schedule.DateKey = dateKey
	return &schedule, nil
}
