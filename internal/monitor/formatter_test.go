package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatLatency(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0.0ms"},
		{12300 * time.Microsecond, "12.3ms"},
		{999 * time.Millisecond, "999.0ms"},
		{1500 * time.Millisecond, "1.5s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatLatency(tt.in))
	}
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "0.0%", FormatPercentage(0))
	assert.Equal(t, "75.0%", FormatPercentage(0.75))
	assert.Equal(t, "100.0%", FormatPercentage(1))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "42", FormatCount(42))
	assert.Equal(t, "9999", FormatCount(9999))
	assert.Equal(t, "12.3k", FormatCount(12_345))
	assert.Equal(t, "2.5M", FormatCount(2_500_000))
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "+3", FormatDelta(3))
	assert.Equal(t, "-1", FormatDelta(-1))
	assert.Equal(t, "", FormatDelta(0))
}
