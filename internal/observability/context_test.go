package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDContext(t *testing.T) {
	t.Run("stores and retrieves request ID", func(t *testing.T) {
		ctx := context.Background()
		ctx = WithRequestID(ctx, "req-123")

		result := RequestIDFromContext(ctx)
		assert.Equal(t, "req-123", result)
	})

	t.Run("returns empty string when not set", func(t *testing.T) {
		ctx := context.Background()
		result := RequestIDFromContext(ctx)
		assert.Equal(t, "", result)
	})
}

func TestResearcherIDContext(t *testing.T) {
	t.Run("stores and retrieves researcher ID", func(t *testing.T) {
		ctx := context.Background()
		ctx = WithResearcherID(ctx, "did:plc:abc")

		result := ResearcherIDFromContext(ctx)
		assert.Equal(t, "did:plc:abc", result)
	})

	t.Run("returns empty string when not set", func(t *testing.T) {
		ctx := context.Background()
		result := ResearcherIDFromContext(ctx)
		assert.Equal(t, "", result)
	})
}
