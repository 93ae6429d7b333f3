package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"sagafalabella/scraper/internal/domain"
)

// StateManager remembers which stages finished for a run date.
type StateManager interface {
	GetCheckpoint(ctx context.Context, stage domain.Stage, runDate string) (*domain.Checkpoint, error)
	SetCheckpoint(ctx context.Context, checkpoint domain.Checkpoint) error
	ClearCheckpoint(ctx context.Context, stage domain.Stage, runDate string) error
}

type redisStateManager struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisStateManager(redisClient *redis.Client, prefix string) StateManager {
	return &redisStateManager{
		redisClient: redisClient,
		keyPrefix:   prefix + ":checkpoint:",
	}
}

func (s *redisStateManager) key(stage domain.Stage, runDate string) string {
	return s.keyPrefix + stage.String() + ":" + runDate
}

// GetCheckpoint returns domain.ErrCheckpointNotFound when the stage has not
// finished for runDate.
func (s *redisStateManager) GetCheckpoint(ctx context.Context, stage domain.Stage, runDate string) (*domain.Checkpoint, error) {
	val, err := s.redisClient.Get(ctx, s.key(stage, runDate)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("failed to get %s checkpoint for %s: %w", stage, runDate, err)
	}

	var checkpoint domain.Checkpoint
	if err := json.Unmarshal([]byte(val), &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to parse %s checkpoint for %s: %w", stage, runDate, err)
	}
	return &checkpoint, nil
}

func (s *redisStateManager) SetCheckpoint(ctx context.Context, checkpoint domain.Checkpoint) error {
	data, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	err = s.redisClient.Set(ctx, s.key(checkpoint.Stage, checkpoint.RunDate), data, 0).Err() // No expiration
	if err != nil {
		return fmt.Errorf("failed to set %s checkpoint for %s: %w", checkpoint.Stage, checkpoint.RunDate, err)
	}
	return nil
}

func (s *redisStateManager) ClearCheckpoint(ctx context.Context, stage domain.Stage, runDate string) error {
	if err := s.redisClient.Del(ctx, s.key(stage, runDate)).Err(); err != nil {
		return fmt.Errorf("failed to clear %s checkpoint for %s: %w", stage, runDate, err)
	}
	return nil
}

// memoryStateManager keeps checkpoints for the lifetime of the process.
type memoryStateManager struct {
	mu          sync.Mutex
	checkpoints map[string]domain.Checkpoint
}

func NewMemoryStateManager() StateManager {
	return &memoryStateManager{checkpoints: make(map[string]domain.Checkpoint)}
}

func (m *memoryStateManager) GetCheckpoint(_ context.Context, stage domain.Stage, runDate string) (*domain.Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	checkpoint, ok := m.checkpoints[stage.String()+":"+runDate]
	if !ok {
		return nil, domain.ErrCheckpointNotFound
	}
	return &checkpoint, nil
}

func (m *memoryStateManager) SetCheckpoint(_ context.Context, checkpoint domain.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkpoints[checkpoint.Stage.String()+":"+checkpoint.RunDate] = checkpoint
	return nil
}

func (m *memoryStateManager) ClearCheckpoint(_ context.Context, stage domain.Stage, runDate string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.checkpoints, stage.String()+":"+runDate)
	return nil
}
