package papersources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/scholarly-search-proxy/internal/domain"
)

func TestParseOffsetCursor(t *testing.T) {
	tests := []struct {
		name     string
		cursor   string
		expected int
		wantErr  bool
	}{
		{name: "empty", cursor: "", expected: 0},
		{name: "star", cursor: "*", expected: 0},
		{name: "zero", cursor: "0", expected: 0},
		{name: "positive", cursor: "40", expected: 40},
		{name: "surrounding whitespace", cursor: " 20 ", expected: 20},
		{name: "negative clamps to zero", cursor: "-5", expected: 0},
		{name: "not a number", cursor: "abc", wantErr: true},
		{name: "decimal", cursor: "1.5", wantErr: true},
		{name: "opaque openalex token", cursor: "IlsxMDBd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOffsetCursor(tt.cursor)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidCursor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNextOffsetCursor(t *testing.T) {
	tests := []struct {
		name     string
		offset   int
		n        int
		total    int
		expected *string
	}{
		{name: "more pages", offset: 0, n: 10, total: 25, expected: domain.StringPtr("10")},
		{name: "middle page", offset: 10, n: 10, total: 25, expected: domain.StringPtr("20")},
		{name: "last partial page", offset: 20, n: 5, total: 25, expected: nil},
		{name: "exactly at total", offset: 15, n: 10, total: 25, expected: nil},
		{name: "empty result set", offset: 0, n: 0, total: 0, expected: nil},
		{name: "offset past total", offset: 100, n: 0, total: 25, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextOffsetCursor(tt.offset, tt.n, tt.total))
		})
	}
}
