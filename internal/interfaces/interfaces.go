package interfaces

import (
	"context"

	"chat-widget/backend/internal/service"
)

// This file defines the interfaces for our core services.
// Depending on these interfaces, instead of concrete implementations, keeps the
// API layer decoupled from the service layer and lets handlers be tested with mocks.

// ChatService defines the contract for the chat exchange logic.
type ChatService interface {
	Reply(ctx context.Context, in *service.ChatInput) (string, error)
}
