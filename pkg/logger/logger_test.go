package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNewLoggerWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fighttag.log")

	l, err := NewLogger("info", "json", "fighttag", path)
	require.NoError(t, err)
	l.Debug("hidden")
	l.Info("saved fight")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"saved fight"`)
	assert.Contains(t, out, `"service_name":"fighttag"`)
	assert.False(t, strings.Contains(out, "hidden"))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
