package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/shiftboard/internal/docstore"
	"github.com/spec-kit/shiftboard/internal/domain"
)

// AgentRepository handles persistence for roster agents.
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	ListByName(ctx context.Context) ([]domain.Agent, error)
}

type agentRepository struct {
	store docstore.Store
}

// NewAgentRepository instantiates the repository.
func NewAgentRepository(store docstore.Store) AgentRepository {
	return &agentRepository{store: store}
}

func (r *agentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	doc, err := docstore.Encode(agent)
	if err != nil {
		return err
	}
	id, err := r.store.Add(ctx, docstore.CollectionAgents, doc)
	if err != nil {
		return err
	}
	agent.ID = id
	return nil
}

func (r *agentRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, docstore.CollectionAgents, id)
}

func (r *agentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionAgents, id)
	if err != nil {
		return nil, err
	}
	var agent domain.Agent
	if err := docstore.Decode(doc, &agent); err != nil {
		return nil, fmt.Errorf("decode agent %s: %w", id, err)
	}
	agent.ID = id
	return &agent, nil
}

// ListByName returns every agent ordered by the store's name ordering.
func (r *agentRepository) ListByName(ctx context.Context) ([]domain.Agent, error) {
	recs, err := r.store.GetFiltered(ctx, docstore.CollectionAgents, docstore.Query{
		OrderBy: []docstore.Order{{Field: "name"}},
	})
	if err != nil {
		return nil, err
	}
	result := make([]domain.Agent, 0, len(recs))
	for _, rec := range recs {
		var agent domain.Agent
		if err := docstore.Decode(rec.Data, &agent); err != nil {
			return nil, fmt.Errorf("decode agent %s: %w", rec.Key, err)
		}
		agent.ID = rec.Key
		result = append(result, agent)
	}
	return result, nil
}
