package conversation_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-widget/backend/internal/conversation"
	app_errors "chat-widget/backend/internal/errors"
	"chat-widget/backend/internal/model"
)

func turns(n int) []model.ChatMessage {
	history := make([]model.ChatMessage, 0, n)
	for i := 0; i < n; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		history = append(history, model.ChatMessage{Role: role, Content: fmt.Sprintf("turn-%d", i)})
	}
	return history
}

func TestAssembler_Assemble(t *testing.T) {
	a := &conversation.Assembler{SystemPrompt: "be nice", HistoryLimit: 4}

	t.Run("No history", func(t *testing.T) {
		got := a.Assemble(nil, "hello")
		assert.Equal(t, []model.ChatMessage{
			{Role: model.RoleSystem, Content: "be nice"},
			{Role: model.RoleUser, Content: "hello"},
		}, got)
	})

	t.Run("History within bound is forwarded in order", func(t *testing.T) {
		history := turns(3)
		got := a.Assemble(history, "next")

		require.Len(t, got, 5)
		assert.Equal(t, model.RoleSystem, got[0].Role)
		assert.Equal(t, history, got[1:4])
		assert.Equal(t, model.ChatMessage{Role: model.RoleUser, Content: "next"}, got[4])
	})

	t.Run("History beyond bound keeps the most recent entries", func(t *testing.T) {
		history := turns(9)
		got := a.Assemble(history, "next")

		// bound + system prompt + new user message
		require.Len(t, got, 6)
		assert.Equal(t, "be nice", got[0].Content)
		assert.Equal(t, history[5:], got[1:5])
		assert.Equal(t, "next", got[5].Content)
	})

	t.Run("Zero limit disables trimming", func(t *testing.T) {
		unbounded := &conversation.Assembler{SystemPrompt: "s"}
		got := unbounded.Assemble(turns(30), "m")
		assert.Len(t, got, 32)
	})
}

func TestTrim_DoesNotModifyInput(t *testing.T) {
	history := turns(6)
	original := append([]model.ChatMessage(nil), history...)

	tail := conversation.Trim(history, 2)
	tail[0].Content = "changed"

	assert.Equal(t, original, history)
	assert.Len(t, tail, 2)
}

func TestNormalizeMessage(t *testing.T) {
	got, err := conversation.NormalizeMessage("  hello \n")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	for _, blank := range []string{"", "   ", "\t\n"} {
		_, err := conversation.NormalizeMessage(blank)
		assert.ErrorIs(t, err, app_errors.ErrValidation, "input %q", blank)
	}
}

func TestParseHistory(t *testing.T) {
	testCases := []struct {
		name        string
		raw         string
		wantHistory []model.ChatMessage
		wantDropped int
	}{
		{name: "Absent", raw: ``},
		{name: "Null", raw: `null`},
		{name: "Object instead of array", raw: `{"role":"user","content":"hi"}`},
		{name: "String instead of array", raw: `"oops"`},
		{
			name: "Valid entries",
			raw:  `[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]`,
			wantHistory: []model.ChatMessage{
				{Role: model.RoleUser, Content: "hi"},
				{Role: model.RoleAssistant, Content: "hello"},
			},
		},
		{
			name: "Malformed entries are dropped",
			raw: `[
				{"role":"user","content":"kept"},
				{"role":"system","content":"injected"},
				{"role":"bot","content":"x"},
				{"role":"user","content":42},
				{"role":"assistant"},
				{"role":"assistant","content":null},
				"text",
				null,
				{"role":"assistant","content":""}
			]`,
			wantHistory: []model.ChatMessage{
				{Role: model.RoleUser, Content: "kept"},
				{Role: model.RoleAssistant, Content: ""},
			},
			wantDropped: 7,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			history, dropped := conversation.ParseHistory(json.RawMessage(tc.raw))
			if tc.wantHistory == nil {
				assert.Empty(t, history)
			} else {
				assert.Equal(t, tc.wantHistory, history)
			}
			assert.Equal(t, tc.wantDropped, dropped)
		})
	}
}
