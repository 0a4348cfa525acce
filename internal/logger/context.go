package logger

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestID returns the request ID from the context, or "" when absent.
// The ID is set by chi's RequestID middleware.
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}
