package logging

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithRequestID_DropsInvalid(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		id   string
		want string
	}{
		{"valid", "abc-123_X", "abc-123_X"},
		{"empty", "", ""},
		{"spaces", "abc 123", ""},
		{"newline injection", "abc\n{\"admin\":true}", ""},
		{"too long", strings.Repeat("a", maxIDLen+1), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequestIDFromContext(WithRequestID(ctx, tt.id))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContextFields(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-9")
	ctx = WithSessionID(ctx, "sess-9")
	ctx = WithVisitorID(ctx, "visitor-9")

	keys := map[string]string{}
	for _, f := range ContextFields(ctx) {
		keys[f.Key] = f.String
	}
	assert.Equal(t, "req-9", keys["request.id"])
	assert.Equal(t, "sess-9", keys["chat.session_id"])
	assert.Equal(t, "visitor-9", keys["chat.visitor_id"])

	assert.Empty(t, ContextFields(context.Background()))
}
