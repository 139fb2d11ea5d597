// Package conversation builds the ordered message list sent to the
// completion provider: the system prompt, a bounded slice of history and the
// new user turn.
package conversation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	app_errors "chat-widget/backend/internal/errors"
	"chat-widget/backend/internal/model"
)

// Assembler combines the system prompt, trimmed history and the user message.
type Assembler struct {
	SystemPrompt string
	// HistoryLimit is the maximum number of history entries forwarded.
	// Zero or less disables trimming.
	HistoryLimit int
}

// Assemble returns [system] ++ Trim(history) ++ [user message].
// The message is expected to be normalized already.
func (a *Assembler) Assemble(history []model.ChatMessage, message string) []model.ChatMessage {
	trimmed := Trim(history, a.HistoryLimit)

	messages := make([]model.ChatMessage, 0, len(trimmed)+2)
	messages = append(messages, model.ChatMessage{Role: model.RoleSystem, Content: a.SystemPrompt})
	messages = append(messages, trimmed...)
	messages = append(messages, model.ChatMessage{Role: model.RoleUser, Content: message})
	return messages
}

// NormalizeMessage trims surrounding whitespace and rejects empty messages.
func NormalizeMessage(message string) (string, error) {
	normalized := strings.TrimSpace(message)
	if normalized == "" {
		return "", fmt.Errorf("%w: message must not be empty", app_errors.ErrValidation)
	}
	return normalized, nil
}

// Trim keeps the most recent limit entries of history. The input is never modified.
func Trim(history []model.ChatMessage, limit int) []model.ChatMessage {
	if limit <= 0 || len(history) <= limit {
		return history
	}
	tail := make([]model.ChatMessage, limit)
	copy(tail, history[len(history)-limit:])
	return tail
}

// historyEntry mirrors ChatMessage with raw fields so each entry can be
// checked for shape before it is accepted.
type historyEntry struct {
	Role    json.RawMessage `json:"role"`
	Content json.RawMessage `json:"content"`
}

// ParseHistory decodes a client-supplied history leniently. A missing, null or
// non-array value yields an empty history. Entries whose role is not user or
// assistant, or whose content is not a string, are dropped; the number of
// dropped entries is returned so callers can log it.
func ParseHistory(raw json.RawMessage) ([]model.ChatMessage, int) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, 0
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, 0
	}

	history := make([]model.ChatMessage, 0, len(entries))
	dropped := 0
	for _, rawEntry := range entries {
		msg, ok := parseEntry(rawEntry)
		if !ok {
			dropped++
			continue
		}
		history = append(history, msg)
	}
	return history, dropped
}

func parseEntry(raw json.RawMessage) (model.ChatMessage, bool) {
	var entry historyEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return model.ChatMessage{}, false
	}

	var role model.Role
	if err := json.Unmarshal(entry.Role, &role); err != nil || !role.IsHistoryRole() {
		return model.ChatMessage{}, false
	}

	var content *string
	if err := json.Unmarshal(entry.Content, &content); err != nil || content == nil {
		return model.ChatMessage{}, false
	}

	return model.ChatMessage{Role: role, Content: *content}, true
}
