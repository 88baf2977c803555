package misc

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pkg.xapk")

	exists, err := IsFileExists(path)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	exists, err = IsFileExists(path)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = IsFileExists(dir)
	assert.Error(t, err)
}

func TestLogger_prefix(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetDefaultLog(&buf, LogLevel(true))

	log := NewLogger("fetch")
	log.Debugf("GET %s\n", "https://example.com")

	assert.Contains(t, buf.String(), "[FETCH] GET https://example.com")
	assert.Contains(t, buf.String(), "level=DEBUG")
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogLevel(true))
	assert.Equal(t, slog.LevelInfo, LogLevel(false))
}
