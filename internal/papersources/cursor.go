package papersources

import (
	"strconv"
	"strings"

	"github.com/helixir/scholarly-search-proxy/internal/domain"
)

// ParseOffsetCursor converts an offset-style cursor into a start offset.
// Empty and "*" mean 0, negative numbers are clamped to 0, and anything that
// is not a base-10 integer yields an *domain.InvalidCursorError.
func ParseOffsetCursor(cursor string) (int, error) {
	c := strings.TrimSpace(cursor)
	if c == "" || c == domain.StartCursor {
		return 0, nil
	}
	n, err := strconv.Atoi(c)
	if err != nil {
		return 0, domain.NewInvalidCursorError(cursor)
	}
	if n < 0 {
		return 0, nil
	}
	return n, nil
}

// NextOffsetCursor returns the cursor for the page after one that started at
// offset and returned n items, or nil when offset+n has reached total.
func NextOffsetCursor(offset, n, total int) *string {
	next := offset + n
	if next >= total {
		return nil
	}
	return domain.StringPtr(strconv.Itoa(next))
}
