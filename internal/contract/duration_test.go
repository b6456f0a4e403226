package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestParseWindowDuration covers valid and invalid window formats.
func TestParseWindowDuration(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Duration
		expectError bool
	}{
		{
			name:     "go duration passthrough",
			input:    "720h",
			expected: 720 * time.Hour,
		},
		{
			name:     "plural days",
			input:    "30 days",
			expected: 30 * 24 * time.Hour,
		},
		{
			name:     "singular day",
			input:    "1 day",
			expected: 24 * time.Hour,
		},
		{
			name:     "weeks",
			input:    "2 weeks",
			expected: 14 * 24 * time.Hour,
		},
		{
			name:     "months (mixed case)",
			input:    "1 MoNtH",
			expected: 30 * 24 * time.Hour,
		},
		{
			name:     "years",
			input:    "1 year",
			expected: 365 * 24 * time.Hour,
		},
		{
			name:     "hours with whitespace",
			input:    "  6 hours  ",
			expected: 6 * time.Hour,
		},
		{
			name:     "minutes",
			input:    "45 minutes",
			expected: 45 * time.Minute,
		},
		{
			name:        "zero value",
			input:       "0 days",
			expectError: true,
		},
		{
			name:        "negative go duration",
			input:       "-5h",
			expectError: true,
		},
		{
			name:        "unsupported unit",
			input:       "4 decades",
			expectError: true,
		},
		{
			name:        "missing value",
			input:       "days",
			expectError: true,
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWindowDuration(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
