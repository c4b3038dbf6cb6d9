package shared

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAndGetTraceID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx), "Expected empty trace ID in original context")

	ctxWithTrace := SetTraceID(ctx)
	traceID := GetTraceID(ctxWithTrace)
	assert.Len(t, traceID, 32, "Expected trace ID length to be 32 hex characters (16 bytes)")

	assert.Empty(t, GetTraceID(ctx), "Expected original context to remain unchanged")
	assert.NotEqual(t, traceID, GetTraceID(SetTraceID(ctx)))
}

func TestWithTraceID(t *testing.T) {
	t.Parallel()

	ctx := WithTraceID(context.Background(), "client-trace-1")
	assert.Equal(t, "client-trace-1", GetTraceID(ctx))

	ctx = context.WithValue(context.Background(), TraceIDKey, 123)
	assert.Empty(t, GetTraceID(ctx), "Expected empty trace ID when context has invalid type")
}

func TestSanitizeTraceID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"abc-123_DEF", "abc-123_DEF"},
		{"  padded  ", "padded"},
		{"", ""},
		{"has space", ""},
		{"newline\ninjected", ""},
		{"quote\"", ""},
		{strings.Repeat("a", 65), ""},
		{strings.Repeat("a", 64), strings.Repeat("a", 64)},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, SanitizeTraceID(tc.in), "input %q", tc.in)
	}
}
