package repository

import (
	"context"

	"chat-widget/backend/internal/model"
)

// HistoryStore holds server-side conversation history, keyed by conversation.
// Implementations must apply Append atomically per key.
type HistoryStore interface {
	// Load returns the stored history for key in conversation order.
	// An unknown key yields an empty history.
	Load(ctx context.Context, key string) ([]model.ChatMessage, error)
	// Append adds msgs in order and then keeps only the most recent limit
	// entries. A limit of zero or less keeps everything.
	Append(ctx context.Context, key string, limit int, msgs ...model.ChatMessage) error
}
