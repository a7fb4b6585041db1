package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, steps)

	steps, err = parseSteps([]string{" 3 "})
	require.NoError(t, err)
	assert.Equal(t, 3, steps)

	_, err = parseSteps([]string{"0"})
	assert.Error(t, err)

	_, err = parseSteps([]string{"two"})
	assert.Error(t, err)
}

func TestParseVersionAndTarget(t *testing.T) {
	version, err := parseVersion("1779840000")
	require.NoError(t, err)
	assert.Equal(t, 1779840000, version)

	_, err = parseVersion("-1")
	assert.Error(t, err)

	_, err = parseVersion("abc")
	assert.Error(t, err)

	target, err := parseTarget("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), target)

	_, err = parseTarget("-5")
	assert.Error(t, err)
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorIs(t, run(nil, &out, logging.NewNop()), errUsage)
	assert.ErrorIs(t, run([]string{"sideways"}, &out, logging.NewNop()), errUsage)
}

func TestRunRequiresDBURL(t *testing.T) {
	t.Setenv("DB_URL", "")

	err := run([]string{"up"}, &bytes.Buffer{}, logging.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_URL is required")
}

func TestResolveMigrationsDirPrefersEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MIGRATIONS_DIR", dir)

	got, err := resolveMigrationsDir()
	require.NoError(t, err)

	want, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveMigrationsDirSkipsFiles(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir.sql")
	require.NoError(t, os.WriteFile(file, []byte("SELECT 1;"), 0o600))
	t.Setenv("MIGRATIONS_DIR", file)
	t.Setenv("MIGRATIONS_PATH", "")

	got, err := resolveMigrationsDir()
	if err == nil {
		assert.NotEqual(t, file, got)
	}
}
