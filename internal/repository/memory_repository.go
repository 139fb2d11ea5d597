package repository

import (
	"context"
	"sync"

	"chat-widget/backend/internal/model"
)

type memoryRepository struct {
	mu      sync.Mutex
	history map[string][]model.ChatMessage
}

// NewMemoryRepository returns a process-lifetime store. Everything is lost on restart.
func NewMemoryRepository() HistoryStore {
	return &memoryRepository{history: make(map[string][]model.ChatMessage)}
}

func (r *memoryRepository) Load(_ context.Context, key string) ([]model.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.history[key]
	out := make([]model.ChatMessage, len(stored))
	copy(out, stored)
	return out, nil
}

func (r *memoryRepository) Append(_ context.Context, key string, limit int, msgs ...model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf := append(r.history[key], msgs...)
	if limit > 0 && len(buf) > limit {
		// Copy so the dropped prefix is not kept alive by the backing array.
		buf = append([]model.ChatMessage(nil), buf[len(buf)-limit:]...)
	}
	r.history[key] = buf
	return nil
}
