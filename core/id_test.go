package core

import (
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_ValidPrefix(t *testing.T) {
	testCases := []struct {
		name     string
		prefix   string
		expected string
	}{
		{
			name:     "simple prefix",
			prefix:   "wr",
			expected: "wr",
		},
		{
			name:     "uppercase prefix gets lowercased",
			prefix:   "WR",
			expected: "wr",
		},
		{
			name:     "prefix with leading/trailing spaces gets trimmed",
			prefix:   "  wr  ",
			expected: "wr",
		},
		{
			name:     "single character prefix",
			prefix:   "w",
			expected: "w",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id := NewID(tc.prefix)

			parts := strings.Split(id, "_")
			require.Len(t, parts, 2, "ID should have exactly one underscore separating prefix and ULID")

			assert.Equal(t, tc.expected, parts[0], "Prefix should be cleaned correctly")

			_, err := ulid.Parse(parts[1])
			require.NoError(t, err, "ULID part should parse")
		})
	}
}

func TestNewID_EmptyPrefixPanics(t *testing.T) {
	assert.Panics(t, func() { NewID("") })
	assert.Panics(t, func() { NewID("   ") })
}

func TestIsValidULID(t *testing.T) {
	valid := NewID("wr")
	assert.True(t, IsValidULID(valid))

	assert.False(t, IsValidULID(""))
	assert.False(t, IsValidULID("wr"))
	assert.False(t, IsValidULID("wr_tooshort"))
	assert.False(t, IsValidULID("WR_01G0EZ1XTM37C5X11SQTDNCTM1"), "uppercase prefix is invalid")
	assert.False(t, IsValidULID("wr_01G0EZ1XTM37C5X11SQTDNCTM1_extra"))
}
