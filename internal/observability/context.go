package observability

import (
	"context"
)

// Context keys for observability data.
type contextKey string

const (
	requestIDKey    contextKey = "request_id"
	researcherIDKey contextKey = "researcher_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// WithResearcherID adds a researcher ID to the context.
func WithResearcherID(ctx context.Context, researcherID string) context.Context {
	return context.WithValue(ctx, researcherIDKey, researcherID)
}

// ResearcherIDFromContext retrieves the researcher ID from context.
// Returns empty string if not present.
func ResearcherIDFromContext(ctx context.Context) string {
	if v := ctx.Value(researcherIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
