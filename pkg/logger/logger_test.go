package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

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

func TestJSONLogger_WritesStructuredEntries(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions("devtrack", LevelInfo, &buf)

	log.Info("Device registered", map[string]interface{}{"serial_number": "SN001"})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "devtrack", entries[0]["service"])
	assert.Equal(t, "Device registered", entries[0]["message"])
	assert.Equal(t, "SN001", entries[0]["serial_number"])
	assert.NotEmpty(t, entries[0]["timestamp"])
}

func TestJSONLogger_LevelThreshold(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions("devtrack", LevelWarn, &buf)

	log.Debug("dropped", nil)
	log.Info("dropped", nil)
	log.Warn("kept", nil)
	log.Error("kept", nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "error", entries[1]["level"])
}

func TestJSONLogger_ReservedFieldsAreNotOverwritten(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions("devtrack", LevelDebug, &buf)

	log.Info("hello", map[string]interface{}{"message": "shadow"})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0]["message"])
	assert.Equal(t, "shadow", entries[0]["field_message"])
}

func TestJSONLogger_FatalExits(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOptions("devtrack", LevelInfo, &buf).(*jsonLogger)
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatal("Failed to connect to database", nil)

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), `"level":"fatal"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}
