package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/shiftboard/internal/docstore"
	"github.com/spec-kit/shiftboard/internal/domain"
	"github.com/spec-kit/shiftboard/internal/events"
	"github.com/spec-kit/shiftboard/internal/observability"
	"github.com/spec-kit/shiftboard/internal/repository"
	"github.com/spec-kit/shiftboard/internal/roster"
	apperrors "github.com/spec-kit/shiftboard/pkg/util/errorutil"
)

// RosterService manages agents and keeps the roster cache current.
type RosterService struct {
	agents     repository.AgentRepository
	cache      *roster.Cache
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// RosterDependencies bundles collaborators for the roster service.
type RosterDependencies struct {
	AgentRepo  repository.AgentRepository
	Cache      *roster.Cache
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// AgentInput is the add-agent form.
type AgentInput struct {
	Name       string
	Email      string
	ExternalID any
}

// NewRosterService constructs the service.
func NewRosterService(deps RosterDependencies) *RosterService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{
		agents:     deps.AgentRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Refresh reloads the roster cache from the store. Agents written outside this
// process become visible here, so cached views derived from the old snapshot
// are dropped through a roster_changed event.
func (s *RosterService) Refresh(ctx context.Context) ([]domain.Agent, error) {
	agents, err := s.reload(ctx)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, s.logger, nil, events.EventRosterChanged, events.RosterChangedPayload{
		Kind: events.RosterReloaded,
	})
	return agents, nil
}

func (s *RosterService) reload(ctx context.Context) ([]domain.Agent, error) {
	agents, err := s.cache.Refresh(ctx)
	s.metrics.RecordRosterRefresh(len(agents), err)
	if err != nil {
		s.logger.Error("roster refresh failed", zap.Error(err))
		return nil, apperrors.NewPersistenceError("refresh roster", err)
	}
	return agents, nil
}

// ListAgents returns every stored agent ordered by name, including entries the
// cache dropped as duplicates, so they can still be deleted.
func (s *RosterService) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	agents, err := s.agents.ListByName(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list agents", err)
	}
	for i := range agents {
		agents[i].ExternalID = domain.NewExternalID(agents[i].ExternalID)
	}
	return agents, nil
}

// AddAgent validates and stores a new agent, then refreshes the cache.
func (s *RosterService) AddAgent(ctx context.Context, actor *domain.User, input AgentInput) (*domain.Agent, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	agent := &domain.Agent{
		Name:       strings.TrimSpace(input.Name),
		Email:      strings.TrimSpace(input.Email),
		ExternalID: domain.NewExternalID(input.ExternalID),
	}
	if agent.Name == "" || agent.ExternalID == "" {
		return nil, apperrors.NewValidationError("name and external_id required", nil)
	}

	if _, err := s.reload(ctx); err != nil {
		return nil, err
	}
	if existing, ok := s.cache.Lookup(agent.ExternalID); ok {
		return nil, apperrors.NewConflict("external id already in roster", map[string]any{
			"external_id": agent.ExternalID,
			"agent_id":    existing.ID,
		})
	}

	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, apperrors.NewPersistenceError("create agent", err)
	}
	s.logger.Info("agent added", zap.String("agent_id", agent.ID), zap.String("external_id", string(agent.ExternalID)))

	// The store already changed, so the event goes out even if the reload fails.
	_, err := s.reload(ctx)
	publish(ctx, s.dispatcher, s.logger, actor, events.EventRosterChanged, events.RosterChangedPayload{
		Kind:       events.RosterAgentAdded,
		AgentID:    agent.ID,
		ExternalID: agent.ExternalID,
	})
	if err != nil {
		return nil, err
	}
	return agent, nil
}

// DeleteAgent removes an agent from the roster. Day schedules that reference
// its external id are left untouched.
func (s *RosterService) DeleteAgent(ctx context.Context, actor *domain.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	agent, err := s.agents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return apperrors.NewNotFound("agent", map[string]any{"agent_id": id})
		}
		return apperrors.NewPersistenceError("load agent", err)
	}
	if err := s.agents.Delete(ctx, id); err != nil {
		return apperrors.NewPersistenceError("delete agent", err)
	}
	s.logger.Info("agent deleted", zap.String("agent_id", id))

	_, err = s.reload(ctx)
	publish(ctx, s.dispatcher, s.logger, actor, events.EventRosterChanged, events.RosterChangedPayload{
		Kind:       events.RosterAgentDeleted,
		AgentID:    id,
		ExternalID: domain.NewExternalID(agent.ExternalID),
	})
	return err
}
