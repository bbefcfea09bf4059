package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestGRPCLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewGRPCLogger(zerolog.New(&buf).Level(zerolog.DebugLevel), 1)

	l.Info("channel ", "ready")
	l.Warningf("retrying %s", "dial")
	l.Errorln("transport", "closed")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 3)

	assert.Equal(t, "debug", entries[0]["level"])
	assert.Equal(t, "channel ready", entries[0]["message"])
	assert.Equal(t, "grpc", entries[0]["component"])

	assert.Equal(t, "warn", entries[1]["level"])
	assert.Equal(t, "retrying dial", entries[1]["message"])

	assert.Equal(t, "error", entries[2]["level"])
	assert.Equal(t, "transport closed", entries[2]["message"])
}

func TestGRPCLogger_V(t *testing.T) {
	l := NewGRPCLogger(zerolog.Nop(), 2)
	assert.True(t, l.V(0))
	assert.True(t, l.V(2))
	assert.False(t, l.V(3))
}
