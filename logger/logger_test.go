package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/injoyai/awatcher/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}

func TestInit(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "logs", "awatcher.log")
	closeFn, err := Init(config.Logging{Level: "info", FilePath: filename, RotationMB: 1})
	require.NoError(t, err)

	Debugf("hidden %d", 1)
	Infof("shown %d", 2)
	Warnf("warn %s", "x")
	require.NoError(t, closeFn())

	bs, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.NotContains(t, string(bs), "hidden 1")
	assert.Contains(t, string(bs), "[INFO] shown 2")
	assert.Contains(t, string(bs), "[WARN] warn x")
}
