package configstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hokensys/shinsa/pkg/models"
)

// DefaultFreshness is how long a cached configuration kind stays valid
// before the next access re-fetches it from the store.
const DefaultFreshness = 5 * time.Minute

type cacheEntry struct {
	mu        sync.Mutex
	value     any
	fetchedAt time.Time
}

// Cache is a per-kind, time-bounded read-through cache over a Store. Each
// kind is fetched and aged independently. A fetch failure propagates to the
// caller; an expired entry is never served in its place. Concurrent readers
// of the same kind share a single in-flight fetch.
type Cache struct {
	store     Store
	freshness time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	entries map[Kind]*cacheEntry
}

// NewCache creates a cache around the given store client. A non-positive
// freshness falls back to DefaultFreshness.
func NewCache(store Store, freshness time.Duration, logger *slog.Logger) *Cache {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}

	return &Cache{
		store:     store,
		freshness: freshness,
		logger:    logger.With("module", "configstore"),
		entries:   make(map[Kind]*cacheEntry),
	}
}

// ClearCache invalidates every kind immediately. Used after an external
// rule-update notification.
func (c *Cache) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Kind]*cacheEntry)
	c.logger.Info("Configuration cache cleared")
}

// HealthCheck reports whether the underlying store is reachable.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.store.HealthCheck(ctx)
}

// Close releases the underlying store client.
func (c *Cache) Close(ctx context.Context) error {
	return c.store.Close(ctx)
}

func (c *Cache) entry(kind Kind) *cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[kind]
	if !ok {
		e = &cacheEntry{}
		c.entries[kind] = e
	}

	return e
}

// get serves the cached value for kind, re-fetching when the entry is absent
// or older than the freshness window. The per-entry lock is held across the
// fetch so concurrent callers of one kind trigger a single store call.
func (c *Cache) get(ctx context.Context, kind Kind, fetch func(context.Context) (any, error)) (any, error) {
	e := c.entry(kind)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.value != nil && time.Since(e.fetchedAt) < c.freshness {
		return e.value, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		if !IsConfigurationUnavailable(err) && !IsConfigurationInvalid(err) {
			err = fmt.Errorf("%w: %v", ErrConfigurationUnavailable, err)
		}

		return nil, NewConfigError("Fetch", kind, err)
	}

	e.value = value
	e.fetchedAt = time.Now()

	c.logger.Debug("Configuration fetched", "kind", string(kind))

	return value, nil
}

func (c *Cache) QuestionFlows(ctx context.Context) ([]*models.QuestionFlowConfig, error) {
	v, err := c.get(ctx, KindQuestionFlow, func(ctx context.Context) (any, error) {
		return c.store.QuestionFlows(ctx)
	})
	if err != nil {
		return nil, err
	}

	return v.([]*models.QuestionFlowConfig), nil
}

func (c *Cache) JudgmentConfigs(ctx context.Context) ([]*models.InsuranceJudgmentConfig, error) {
	v, err := c.get(ctx, KindJudgmentRules, func(ctx context.Context) (any, error) {
		return c.store.JudgmentConfigs(ctx)
	})
	if err != nil {
		return nil, err
	}

	return v.([]*models.InsuranceJudgmentConfig), nil
}

func (c *Cache) ValidationRules(ctx context.Context) ([]*models.ValidationRule, error) {
	v, err := c.get(ctx, KindValidationRules, func(ctx context.Context) (any, error) {
		return c.store.ValidationRules(ctx)
	})
	if err != nil {
		return nil, err
	}

	return v.([]*models.ValidationRule), nil
}

func (c *Cache) CalculationRules(ctx context.Context) ([]*models.CalculationRule, error) {
	v, err := c.get(ctx, KindCalculationRules, func(ctx context.Context) (any, error) {
		return c.store.CalculationRules(ctx)
	})
	if err != nil {
		return nil, err
	}

	return v.([]*models.CalculationRule), nil
}

func (c *Cache) ReasonTemplates(ctx context.Context) ([]*models.ReasonTemplate, error) {
	v, err := c.get(ctx, KindReasonTemplates, func(ctx context.Context) (any, error) {
		return c.store.ReasonTemplates(ctx)
	})
	if err != nil {
		return nil, err
	}

	return v.([]*models.ReasonTemplate), nil
}

func (c *Cache) MasterData(ctx context.Context) ([]*models.OfficeMaster, error) {
	v, err := c.get(ctx, KindMasterData, func(ctx context.Context) (any, error) {
		return c.store.MasterData(ctx)
	})
	if err != nil {
		return nil, err
	}

	return v.([]*models.OfficeMaster), nil
}

// QuestionFlowByID resolves one active flow from the cached collection.
func (c *Cache) QuestionFlowByID(ctx context.Context, id string) (*models.QuestionFlowConfig, error) {
	flows, err := c.QuestionFlows(ctx)
	if err != nil {
		return nil, err
	}

	for _, flow := range flows {
		if flow.ID == id {
			return flow, nil
		}
	}

	return nil, NewConfigError("Lookup", KindQuestionFlow,
		fmt.Errorf("%w: question flow %q not found", ErrConfigurationInvalid, id))
}
