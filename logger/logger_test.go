package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter("WARN", &buf)
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept", zap.String("dialect", "mysql"))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "mysql", entry["dialect"])
	assert.Contains(t, entry, "ts")
	assert.Contains(t, entry, "caller")
}

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel("")
	require.NoError(t, err)
	assert.Equal(t, "info", lvl.String())

	lvl, err = parseLevel("Debug")
	require.NoError(t, err)
	assert.Equal(t, "debug", lvl.String())

	_, err = New("loud")
	assert.Error(t, err)
}
