package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chat-widget/backend/internal/model"
)

type redisRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisRepository stores each conversation as a Redis list of JSON entries.
// A positive ttl expires idle conversations.
func NewRedisRepository(rdb *redis.Client, ttl time.Duration) HistoryStore {
	return &redisRepository{rdb: rdb, ttl: ttl}
}

func (r *redisRepository) historyKey(key string) string { return fmt.Sprintf("chat:%s:history", key) }

func (r *redisRepository) Load(ctx context.Context, key string) ([]model.ChatMessage, error) {
	entries, err := r.rdb.LRange(ctx, r.historyKey(key), 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.ChatMessage{}, nil
		}
		return nil, fmt.Errorf("could not load history: %w", err)
	}

	history := make([]model.ChatMessage, 0, len(entries))
	for _, entry := range entries {
		var msg model.ChatMessage
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			return nil, fmt.Errorf("could not decode history entry: %w", err)
		}
		history = append(history, msg)
	}
	return history, nil
}

func (r *redisRepository) Append(ctx context.Context, key string, limit int, msgs ...model.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(msgs))
	for _, msg := range msgs {
		encoded, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("could not encode history entry: %w", err)
		}
		values = append(values, encoded)
	}

	listKey := r.historyKey(key)
	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, listKey, values...)
	if limit > 0 {
		pipe.LTrim(ctx, listKey, int64(-limit), -1)
	}
	if r.ttl > 0 {
		pipe.Expire(ctx, listKey, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute history append pipeline: %w", err)
	}
	return nil
}
