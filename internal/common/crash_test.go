package common

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCrashFile(t *testing.T) {
	previous := CrashLogDir
	defer func() { CrashLogDir = previous }()

	dir := t.TempDir()
	InstallCrashHandler(dir + "/crashes")

	path := WriteCrashFile("boom", "main.main()\n")
	require.NotEmpty(t, path)
	assert.True(t, strings.HasPrefix(path, dir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(data)
	assert.Contains(t, report, "=== RISKOS CRASH REPORT ===")
	assert.Contains(t, report, "=== PANIC VALUE ===\nboom\n")
	assert.Contains(t, report, "main.main()")
	assert.Contains(t, report, "goroutine ")
}

func TestInstallCrashHandler_KeepsDirWhenEmpty(t *testing.T) {
	previous := CrashLogDir
	defer func() { CrashLogDir = previous }()

	CrashLogDir = "/tmp/riskos-crash"
	InstallCrashHandler("")
	assert.Equal(t, "/tmp/riskos-crash", CrashLogDir)
}
