package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/spec-kit/shiftboard/internal/docstore"
	"github.com/spec-kit/shiftboard/internal/domain"
)

// LeadFilter selects lead records by inclusive date key range.
type LeadFilter struct {
	StartDateKey string
	EndDateKey   string
}

// LeadRepository reads lead records written by the intake process.
type LeadRepository interface {
	List(ctx context.Context, filter LeadFilter) ([]domain.LeadRecord, error)
}

type leadRepository struct {
	store docstore.Store
}

// NewLeadRepository instantiates the repository.
func NewLeadRepository(store docstore.Store) LeadRepository {
	return &leadRepository{store: store}
}

// List returns records ordered by date key then timestamp, newest first.
// Timestamps are stored as text of varying width and zone, so the time order
// is applied after decoding rather than by the store.
func (r *leadRepository) List(ctx context.Context, filter LeadFilter) ([]domain.LeadRecord, error) {
	q := docstore.Query{
		OrderBy: []docstore.Order{{Field: "dateKey", Desc: true}},
	}
	if filter.StartDateKey != "" && filter.StartDateKey == filter.EndDateKey {
		q.Where = append(q.Where, docstore.Predicate{Field: "dateKey", Op: docstore.OpEq, Value: filter.StartDateKey})
	} else {
		if filter.StartDateKey != "" {
			q.Where = append(q.Where, docstore.Predicate{Field: "dateKey", Op: docstore.OpGte, Value: filter.StartDateKey})
		}
		if filter.EndDateKey != "" {
			q.Where = append(q.Where, docstore.Predicate{Field: "dateKey", Op: docstore.OpLte, Value: filter.EndDateKey})
		}
	}

	recs, err := r.store.GetFiltered(ctx, docstore.CollectionLeadRecords, q)
	if err != nil {
		return nil, err
	}
	result := make([]domain.LeadRecord, 0, len(recs))
	for _, rec := range recs {
		var lead domain.LeadRecord
		if err := docstore.Decode(rec.Data, &lead); err != nil {
			return nil, fmt.Errorf("decode lead record %s: %w", rec.Key, err)
		}
		lead.ID = rec.Key
		result = append(result, lead)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].DateKey != result[j].DateKey {
			return result[i].DateKey > result[j].DateKey
		}
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}
