package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/shiftboard/internal/domain"
	"github.com/spec-kit/shiftboard/internal/leads"
	apperrors "github.com/spec-kit/shiftboard/pkg/util/errorutil"
)

// LeadService builds lead summaries for the dashboard.
type LeadService struct {
	aggregator *leads.Aggregator
	logger     *zap.Logger
}

// NewLeadService constructs the service.
func NewLeadService(aggregator *leads.Aggregator, logger *zap.Logger) *LeadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadService{aggregator: aggregator, logger: logger}
}

// Summary groups the leads in the query range by assigned member.
func (s *LeadService) Summary(ctx context.Context, q leads.Query) (*leads.Report, error) {
	report, err := s.aggregator.Summarize(ctx, q)
	if err != nil {
		if errors.Is(err, leads.ErrInvalidRange) {
			return nil, apperrors.NewValidationError("invalid date range", map[string]any{
				"start": q.StartDateKey,
				"end":   q.EndDateKey,
			})
		}
		s.logger.Error("lead summary failed", zap.Error(err))
		return nil, apperrors.NewPersistenceError("load leads", err)
	}
	return report, nil
}

// MemberRecords returns one member's records in the query range.
func (s *LeadService) MemberRecords(ctx context.Context, q leads.Query, memberID string) ([]leads.FormattedRecord, error) {
	id := domain.NewExternalID(memberID)
	if id == "" {
		return nil, apperrors.NewValidationError("member id required", nil)
	}
	q.MemberID = id
	report, err := s.Summary(ctx, q)
	if err != nil {
		return nil, err
	}
	records, ok := report.DrillDown(id)
	if !ok {
		return []leads.FormattedRecord{}, nil
	}
	return records, nil
}
