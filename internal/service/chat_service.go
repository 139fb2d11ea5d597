package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"chat-widget/backend/internal/conversation"
	app_errors "chat-widget/backend/internal/errors"
	"chat-widget/backend/internal/llm"
	"chat-widget/backend/internal/model"
	"chat-widget/backend/internal/repository"
)

// HistorySource selects where conversation history comes from.
type HistorySource string

const (
	// HistoryFromClient uses the history sent with each request; nothing is retained.
	HistoryFromClient HistorySource = "client"
	// HistoryFromServer uses the server-held buffer and appends every exchange to it.
	HistoryFromServer HistorySource = "server"
)

// Options configures a ChatService.
type Options struct {
	Model        string
	SystemPrompt string
	HistoryLimit int

	HistorySource HistorySource
	// HistoryKey is the buffer used in server mode. All callers share it.
	HistoryKey string

	MaxTokens   *int
	Temperature *float64
	TopP        *float64
}

// ChatInput is a single chat exchange as received from the client.
type ChatInput struct {
	Message string
	// History is the raw client-supplied history. It is parsed leniently and
	// ignored in server mode.
	History json.RawMessage
}

type ChatService struct {
	llm       llm.CompletionProvider
	store     repository.HistoryStore
	assembler *conversation.Assembler
	opts      Options

	// locks serialises server-mode exchanges per history key.
	locks sync.Map
}

// NewChatService creates a ChatService. store may be nil in client mode.
func NewChatService(provider llm.CompletionProvider, store repository.HistoryStore, opts Options) *ChatService {
	if opts.HistorySource == "" {
		opts.HistorySource = HistoryFromClient
	}
	return &ChatService{
		llm:   provider,
		store: store,
		assembler: &conversation.Assembler{
			SystemPrompt: opts.SystemPrompt,
			HistoryLimit: opts.HistoryLimit,
		},
		opts: opts,
	}
}

// Reply validates the input, sends the assembled conversation to the
// completion provider and returns the reply text.
//
// Returned errors wrap one of app_errors.ErrValidation,
// app_errors.ErrUpstreamUnavailable, app_errors.ErrUpstreamResponse or
// app_errors.ErrInternal.
func (s *ChatService) Reply(ctx context.Context, in *ChatInput) (string, error) {
	message, err := conversation.NormalizeMessage(in.Message)
	if err != nil {
		return "", err
	}

	if s.opts.HistorySource == HistoryFromServer {
		return s.replyWithServerHistory(ctx, message)
	}

	history, dropped := conversation.ParseHistory(in.History)
	if dropped > 0 {
		slog.Warn("Dropped malformed conversation history entries", "dropped", dropped, "kept", len(history))
	}
	return s.complete(ctx, history, message)
}

func (s *ChatService) replyWithServerHistory(ctx context.Context, message string) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("%w: server history requested but no history store configured", app_errors.ErrInternal)
	}

	key := s.opts.HistoryKey
	unlock := s.lock(key)
	defer unlock()

	history, err := s.store.Load(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: could not load history: %w", app_errors.ErrInternal, err)
	}

	reply, err := s.complete(ctx, history, message)
	if err != nil {
		return "", err
	}

	turns := []model.ChatMessage{
		{Role: model.RoleUser, Content: message},
		{Role: model.RoleAssistant, Content: reply},
	}
	if err := s.store.Append(ctx, key, s.opts.HistoryLimit, turns...); err != nil {
		// The reply exists already; losing it from memory is not worth failing the request.
		slog.Error("Failed to append exchange to history", "key", key, "error", err)
	}
	return reply, nil
}

func (s *ChatService) complete(ctx context.Context, history []model.ChatMessage, message string) (string, error) {
	messages := s.assembler.Assemble(history, message)

	req := &llm.CompletionRequest{
		Model:       s.opts.Model,
		Messages:    toLLMMessages(messages),
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
		TopP:        s.opts.TopP,
	}
	slog.Debug("Sending completion request", "model", req.Model, "messages", len(req.Messages))

	resp, err := s.llm.Complete(ctx, req)
	if err != nil {
		return "", translateLLMError(err)
	}
	return resp.Content, nil
}

// lock acquires the mutex for key and returns its release function.
func (s *ChatService) lock(key string) func() {
	value, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func translateLLMError(err error) error {
	if errors.Is(err, llm.ErrMalformedResponse) {
		return fmt.Errorf("%w: %w", app_errors.ErrUpstreamResponse, err)
	}
	// Non-2xx statuses and transport failures are both "unavailable".
	return fmt.Errorf("%w: %w", app_errors.ErrUpstreamUnavailable, err)
}

func toLLMMessages(messages []model.ChatMessage) []llm.Message {
	out := make([]llm.Message, len(messages))
	for i, msg := range messages {
		out[i] = llm.Message{Role: string(msg.Role), Content: msg.Content}
	}
	return out
}
