package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulga138/tekst/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_UsageWithoutFile(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "tekst [flags] <file>")
}

func TestRoot_UsageWithTwoFiles(t *testing.T) {
	out, err := execute(t, "a.txt", "b.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestRoot_Version(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "tekst dev")
}

func TestRoot_InitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tekst", "config.toml")
	out, err := execute(t, "--init-config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestRoot_BadBufferKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	_, err := execute(t, "--init-config", "--config", path)
	require.NoError(t, err)

	_, err = execute(t, "--config", path, "--buffer", "gap", "file.txt")
	assert.ErrorContains(t, err, "unknown buffer kind")
}
