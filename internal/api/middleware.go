package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	app_errors "chat-widget/backend/internal/errors"
)

// recoverer turns a panic in any handler into the standard JSON 500 response,
// so a single bad request can never take the process down.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				// Abort is how net/http cancels a response; it must propagate.
				panic(rvr)
			}
			slog.Error("Recovered from panic",
				"panic", rvr,
				"request_id", middleware.GetReqID(r.Context()),
				"stack", string(debug.Stack()),
			)
			respondWithError(w, fmt.Errorf("%w: panic: %v", app_errors.ErrInternal, rvr))
		}()

		next.ServeHTTP(w, r)
	})
}
