package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger("test", &buf)

	l.Debug("скрыто")
	l.Info("видно %d", 42)

	assert.NotContains(t, buf.String(), "скрыто")
	assert.Contains(t, buf.String(), "[INFO] [test] видно 42")

	l.SetLevels(TRACE, TRACE)
	l.Trace("трассировка")
	assert.Contains(t, buf.String(), "[TRACE] [test] трассировка")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" warning "))
	assert.Equal(t, INFO, ParseLevel("что-то"))
}

func TestFileLogger(t *testing.T) {
	dir := t.TempDir()
	SetLogDir(dir)
	defer SetLogDir("")

	l, err := NewLogger("filetest")
	require.NoError(t, err)
	l.Debug("в файл")
	require.NoError(t, l.Close())

	files, err := filepath.Glob(filepath.Join(dir, "filetest_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "в файл")
}
