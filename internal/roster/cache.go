// Package roster holds the process-wide snapshot of agents used to resolve
// external ids to names.
package roster

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/spec-kit/shiftboard/internal/domain"
)

// AgentSource lists every agent from the backing store.
type AgentSource interface {
	ListByName(ctx context.Context) ([]domain.Agent, error)
}

// Reader is the read side of the cache handed to aggregators and editors.
type Reader interface {
	Lookup(id domain.ExternalID) (domain.Agent, bool)
	Snapshot() []domain.Agent
}

// Cache is an in-memory, name-ordered mirror of the agents collection.
// Refresh is the single writer; readers get copies.
type Cache struct {
	source AgentSource
	logger *zap.Logger
	locale language.Tag

	mu     sync.RWMutex
	agents []domain.Agent
	index  map[domain.ExternalID]int

	// Overlapping refreshes coalesce: a caller whose arrival precedes the start
	// of a completed load reuses that load instead of issuing another.
	loadMu    sync.Mutex
	arrivals  atomic.Uint64
	satisfied uint64
}

// NewCache builds an empty cache. locale drives name ordering (e.g. "pt-BR").
func NewCache(source AgentSource, locale string, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	tag, err := language.Parse(locale)
	if err != nil {
		logger.Warn("invalid roster locale; using und", zap.String("locale", locale), zap.Error(err))
		tag = language.Und
	}
	return &Cache{
		source: source,
		logger: logger,
		locale: tag,
		index:  make(map[domain.ExternalID]int),
	}
}

// Refresh reloads the roster and replaces the snapshot wholesale. On failure
// the previous snapshot is kept.
func (c *Cache) Refresh(ctx context.Context) ([]domain.Agent, error) {
	ticket := c.arrivals.Add(1)

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if c.satisfied >= ticket {
		return c.Snapshot(), nil
	}
	startedAt := c.arrivals.Load()

	agents, err := c.source.ListByName(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, index := c.build(agents)

	c.mu.Lock()
	c.agents = snapshot
	c.index = index
	c.mu.Unlock()
	c.satisfied = startedAt

	c.logger.Debug("roster refreshed", zap.Int("agents", len(snapshot)))
	return c.Snapshot(), nil
}

func (c *Cache) build(agents []domain.Agent) ([]domain.Agent, map[domain.ExternalID]int) {
	sorted := make([]domain.Agent, len(agents))
	copy(sorted, agents)

	col := collate.New(c.locale, collate.IgnoreCase)
	sort.SliceStable(sorted, func(i, j int) bool {
		return col.CompareString(sorted[i].Name, sorted[j].Name) < 0
	})

	snapshot := make([]domain.Agent, 0, len(sorted))
	index := make(map[domain.ExternalID]int, len(sorted))
	for _, agent := range sorted {
		agent.ExternalID = domain.NewExternalID(agent.ExternalID)
		if agent.ExternalID == "" {
			c.logger.Warn("agent without external id skipped", zap.String("agent_id", agent.ID))
			continue
		}
		if prev, dup := index[agent.ExternalID]; dup {
			c.logger.Warn("duplicate external id in roster",
				zap.String("external_id", string(agent.ExternalID)),
				zap.String("kept_agent_id", snapshot[prev].ID),
				zap.String("dropped_agent_id", agent.ID))
			continue
		}
		index[agent.ExternalID] = len(snapshot)
		snapshot = append(snapshot, agent)
	}
	return snapshot, index
}

// Lookup resolves an external id to its agent.
func (c *Cache) Lookup(id domain.ExternalID) (domain.Agent, bool) {
	id = domain.NewExternalID(id)
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return domain.Agent{}, false
	}
	return c.agents[i], true
}

// Snapshot returns a copy of the name-ordered roster.
func (c *Cache) Snapshot() []domain.Agent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Agent, len(c.agents))
	copy(out, c.agents)
	return out
}

// Len reports the number of agents in the snapshot.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.agents)
}
