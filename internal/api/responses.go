package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	app_errors "chat-widget/backend/internal/errors"
)

// This file contains shared DTOs for API responses and the helpers that keep
// every response, successful or not, in the same JSON shape.

// User-facing failure messages. They match the widget's language and never
// carry upstream details.
const (
	msgUpstreamFailure = "কিছু একটা সমস্যা হয়েছে 😕"
	msgServerFailure   = "Server সমস্যা করেছে 😥"
)

// ErrorResponse defines the standard JSON structure for error messages.
type ErrorResponse struct {
	Error string `json:"error" example:"Message is required"`
}

// StatusResponse is the body of simple status endpoints.
type StatusResponse struct {
	Status string `json:"status"`
}

// respondWithError is the centralized error handling function for the API layer.
// It maps business-layer errors to HTTP status codes and a client-safe message.
func respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		// Validation messages are written for the client already.
		message = err.Error()
	case errors.Is(err, app_errors.ErrUpstreamUnavailable), errors.Is(err, app_errors.ErrUpstreamResponse):
		statusCode = http.StatusInternalServerError
		message = msgUpstreamFailure
	default:
		statusCode = http.StatusInternalServerError
		message = msgServerFailure
	}

	// The detailed error is logged for operators; the client only sees the message.
	slog.Warn("Responding with error", "status_code", statusCode, "client_message", message, "internal_error", err)

	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondWithJSON is a low-level helper for marshaling a payload to JSON
// and writing it to the http.ResponseWriter with a given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}
