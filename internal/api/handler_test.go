// The `_test` suffix creates a "black box" test package that only sees the
// exported API of package api.
package api_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-widget/backend/internal/api"
	app_errors "chat-widget/backend/internal/errors"
	"chat-widget/backend/internal/interfaces/mocks"
	"chat-widget/backend/internal/service"
)

// setupChatHandler creates a handler whose service is a mock.
func setupChatHandler(t *testing.T) (*api.ChatHandler, *mocks.MockChatService) {
	mockChatSvc := mocks.NewMockChatService(t)
	return api.NewChatHandler(mockChatSvc), mockChatSvc
}

func postChat(handler *api.ChatHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.HandleChat(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

// TestChatHandler_HandleChat tests the POST /api/chat endpoint.
func TestChatHandler_HandleChat(t *testing.T) {
	t.Run("Success - message only", func(t *testing.T) {
		handler, mockChatSvc := setupChatHandler(t)
		mockChatSvc.On("Reply", mock.Anything, mock.MatchedBy(func(in *service.ChatInput) bool {
			return in.Message == "hello" && len(in.History) == 0
		})).Return("hi there", nil).Once()

		rr := postChat(handler, `{"message":"hello"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.Equal(t, map[string]string{"reply": "hi there"}, decodeBody(t, rr))
	})

	t.Run("Success - history is passed through raw", func(t *testing.T) {
		handler, mockChatSvc := setupChatHandler(t)
		history := `[{"role":"user","content":"a"},{"role":"bogus"}]`
		mockChatSvc.On("Reply", mock.Anything, mock.MatchedBy(func(in *service.ChatInput) bool {
			return in.Message == "next" && string(in.History) == history
		})).Return("ok", nil).Once()

		rr := postChat(handler, fmt.Sprintf(`{"message":"next","conversationHistory":%s}`, history))

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Success - non-array history does not fail decoding", func(t *testing.T) {
		handler, mockChatSvc := setupChatHandler(t)
		mockChatSvc.On("Reply", mock.Anything, mock.Anything).Return("ok", nil).Once()

		rr := postChat(handler, `{"message":"hi","conversationHistory":"oops"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	// Every case below must be rejected before the service is reached; the
	// mock fails the test on any unexpected call.
	badRequests := map[string]string{
		"Missing message":    `{}`,
		"Null message":       `{"message":null}`,
		"Non-string message": `{"message":42}`,
		"Malformed JSON":     `{"message":`,
		"Empty body":         ``,
	}
	for name, body := range badRequests {
		t.Run("Failure - "+name, func(t *testing.T) {
			handler, mockChatSvc := setupChatHandler(t)

			rr := postChat(handler, body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.NotEmpty(t, decodeBody(t, rr)["error"])
			mockChatSvc.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything)
		})
	}

	t.Run("Failure - blank message rejected by service", func(t *testing.T) {
		handler, mockChatSvc := setupChatHandler(t)
		mockChatSvc.On("Reply", mock.Anything, mock.Anything).
			Return("", fmt.Errorf("%w: message must not be empty", app_errors.ErrValidation)).Once()

		rr := postChat(handler, `{"message":"   "}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeBody(t, rr)["error"], "message must not be empty")
	})

	serverErrors := []struct {
		name string
		err  error
	}{
		{"Upstream unavailable", fmt.Errorf("%w: status 401: {\"error\":\"Invalid API Key gsk_secret\"}", app_errors.ErrUpstreamUnavailable)},
		{"Upstream shape error", fmt.Errorf("%w: no choices", app_errors.ErrUpstreamResponse)},
		{"Unexpected error", errors.New("something exploded: gsk_secret")},
	}
	for _, tc := range serverErrors {
		t.Run("Failure - "+tc.name, func(t *testing.T) {
			handler, mockChatSvc := setupChatHandler(t)
			mockChatSvc.On("Reply", mock.Anything, mock.Anything).Return("", tc.err).Once()

			rr := postChat(handler, `{"message":"hello"}`)

			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			body := decodeBody(t, rr)
			assert.NotEmpty(t, body["error"])
			assert.NotContains(t, body, "reply")
			// Internal details must never reach the client.
			assert.NotContains(t, rr.Body.String(), "gsk_secret")
			assert.NotContains(t, rr.Body.String(), "status 401")
		})
	}
}
