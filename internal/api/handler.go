package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	app_errors "chat-widget/backend/internal/errors"
	"chat-widget/backend/internal/interfaces"
	"chat-widget/backend/internal/model"
	"chat-widget/backend/internal/service"
)

// maxRequestBodyBytes caps the size of a chat request body.
const maxRequestBodyBytes = 1 << 20

// ChatHandler serves the chat endpoint.
type ChatHandler struct {
	service interfaces.ChatService
}

func NewChatHandler(svc interfaces.ChatService) *ChatHandler {
	return &ChatHandler{service: svc}
}

// HandleChat godoc
// @Summary      Send a chat message
// @Description  Forwards the message, with optional prior turns, to the completion provider and returns its reply.
// @Description  Malformed history entries are dropped rather than rejected.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      model.ChatRequest   true  "Message and optional conversation history"
// @Success      200      {object}  model.ChatResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /api/chat [post]
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload: %w", app_errors.ErrValidation, err))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	reply, err := h.service.Reply(r.Context(), &service.ChatInput{
		Message: *req.Message,
		History: req.ConversationHistory,
	})
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, model.ChatResponse{Reply: reply})
}
