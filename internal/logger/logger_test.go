package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	require.NoError(t, Init(DefaultConfig("debug", path)))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	logrus.WithField("module", "test").Info("[OK] written")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[OK] written")
	assert.Contains(t, string(data), "module=test")
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	require.NoError(t, Init(Config{Level: "chatty"}))
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}
