package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"sagafalabella/scraper/internal/domain/task"
)

// Entry is one journaled task as stored in its stream.
type Entry struct {
	ID       string
	TaskType string
	Data     []byte
}

// Queue is an append-only journal of failed work, one stream per task type.
type Queue interface {
	AddTask(ctx context.Context, task task.Task) (string, error) // Returns message ID
	ListTasks(ctx context.Context, taskType string, count int64) ([]Entry, error)
	Len(ctx context.Context, taskType string) (int64, error)
	Clear(ctx context.Context, taskType string) error
}

type RedisQueue struct {
	redisClient  *redis.Client
	streamPrefix string
	maxLen       int64
}

func NewRedisQueue(redisClient *redis.Client, prefix string) *RedisQueue {
	return &RedisQueue{
		redisClient:  redisClient,
		streamPrefix: prefix + ":stream:",
		maxLen:       100000,
	}
}

func (q *RedisQueue) stream(taskType string) string {
	return q.streamPrefix + taskType
}

func (q *RedisQueue) AddTask(ctx context.Context, t task.Task) (string, error) {
	taskType := t.TaskType()
	streamName := q.stream(taskType)

	taskValue, err := t.TaskValue()
	if err != nil {
		return "", fmt.Errorf("failed to serialize task: %w", err)
	}

	messageID, err := q.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: streamName,
		MaxLen: q.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"task_type": taskType,
			"task_data": string(taskValue),
			"added_at":  time.Now().UTC().Format(time.RFC3339),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add task to Redis stream %s: %w", streamName, err)
	}

	log.Debugf("Added task %s to stream %s with message ID: %s", taskType, streamName, messageID)
	return messageID, nil
}

// ListTasks returns up to count entries, oldest first. count <= 0 means all.
func (q *RedisQueue) ListTasks(ctx context.Context, taskType string, count int64) ([]Entry, error) {
	streamName := q.stream(taskType)

	var (
		messages []redis.XMessage
		err      error
	)
	if count > 0 {
		messages, err = q.redisClient.XRangeN(ctx, streamName, "-", "+", count).Result()
	} else {
		messages, err = q.redisClient.XRange(ctx, streamName, "-", "+").Result()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read Redis stream %s: %w", streamName, err)
	}

	entries := make([]Entry, 0, len(messages))
	for _, msg := range messages {
		data, _ := msg.Values["task_data"].(string)
		entries = append(entries, Entry{ID: msg.ID, TaskType: taskType, Data: []byte(data)})
	}
	return entries, nil
}

func (q *RedisQueue) Len(ctx context.Context, taskType string) (int64, error) {
	n, err := q.redisClient.XLen(ctx, q.stream(taskType)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to measure Redis stream %s: %w", q.stream(taskType), err)
	}
	return n, nil
}

func (q *RedisQueue) Clear(ctx context.Context, taskType string) error {
	if err := q.redisClient.Del(ctx, q.stream(taskType)).Err(); err != nil {
		return fmt.Errorf("failed to clear Redis stream %s: %w", q.stream(taskType), err)
	}
	log.Infof("🧹 Cleared stream %s", q.stream(taskType))
	return nil
}
