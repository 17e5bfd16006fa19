// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/simdex/simdex/internal/log"
)

// CorrelationID returns a middleware that attaches a correlation ID to the
// request context and echoes it in the response. An incoming
// X-Correlation-ID header wins; otherwise chi's request ID is used.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = chimiddleware.GetReqID(r.Context())
		}

		w.Header().Set("X-Correlation-ID", correlationID)

		ctx := log.WithCorrelationID(r.Context(), correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
