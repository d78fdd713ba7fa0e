// Package redis provides Redis persistence for saved judgments.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/hokensys/shinsa/pkg/models"
	"github.com/hokensys/shinsa/pkg/persistence"
)

const judgmentKeyPrefix = "shinsa:judgment:"

// Persistence implements the judgment store on a Redis server. Judgments are
// stored as JSON values keyed by subject id, without expiry.
type Persistence struct {
	client *redis.Client
	logger *slog.Logger
}

// NewPersistence creates a new Redis judgment store from a redis:// URL.
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{client: client, logger: logger}, nil
}

func judgmentKey(subjectID string) string {
	return judgmentKeyPrefix + subjectID
}

// SaveJudgment overwrites the stored judgment for the subject.
func (p *Persistence) SaveJudgment(ctx context.Context, judgment *models.SavedJudgment) error {
	data, err := json.Marshal(judgment)
	if err != nil {
		return persistence.NewJudgmentStoreError("Save", judgment.SubjectID, err)
	}

	err = p.client.Set(ctx, judgmentKey(judgment.SubjectID), data, 0).Err()
	if err != nil {
		return persistence.NewJudgmentStoreError("Save", judgment.SubjectID,
			fmt.Errorf("failed to write judgment key: %w", err))
	}

	return nil
}

// JudgmentBySubject loads the stored judgment for the subject.
func (p *Persistence) JudgmentBySubject(ctx context.Context, subjectID string) (*models.SavedJudgment, error) {
	data, err := p.client.Get(ctx, judgmentKey(subjectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, persistence.NewJudgmentStoreError("Load", subjectID, persistence.ErrJudgmentNotFound)
	}

	if err != nil {
		return nil, persistence.NewJudgmentStoreError("Load", subjectID,
			fmt.Errorf("failed to read judgment key: %w", err))
	}

	var judgment models.SavedJudgment

	err = json.Unmarshal(data, &judgment)
	if err != nil {
		return nil, persistence.NewJudgmentStoreError("Load", subjectID,
			fmt.Errorf("corrupt judgment value: %w", err))
	}

	return &judgment, nil
}

// HealthCheck verifies the Redis connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// Close closes the Redis connection.
func (p *Persistence) Close(ctx context.Context) error {
	err := p.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close redis connection: %w", err)
	}

	return nil
}
