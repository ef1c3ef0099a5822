package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_FileOutputCreatesLogDir(t *testing.T) {
	config := NewDefaultConfig()
	config.Logging.Output = []string{"file"}
	config.Logging.Dir = filepath.Join(t.TempDir(), "logs")
	config.Logging.Level = "debug"

	logger := InitLogger(config)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	info, err := os.Stat(config.Logging.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	logger.Info().Str("case", "file").Msg("logger ready")
}

func TestInitLogger_NoOutputsFallsBackToConsole(t *testing.T) {
	config := NewDefaultConfig()
	config.Logging.Output = nil

	logger := InitLogger(config)
	require.NotNil(t, logger)
	logger.Debug().Msg("console fallback")
}

func TestPrintBanner(t *testing.T) {
	assert.NotPanics(t, PrintBanner)
}
