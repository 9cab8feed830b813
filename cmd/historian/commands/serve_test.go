package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeHistorian_DisabledServerReturnsConfigurationError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	contents := "repository:\n  path: " + dir + "\nserver:\n  enabled: false\n"
	require.NoError(t, os.WriteFile(configPath, []byte(contents), 0o600))

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	err := serveHistorian(cmd, configPath)
	require.Error(t, err)
	assert.Equal(t, exitConfigurationInvalid, ExitCode(err))
}

func TestServeHistorian_InvalidConfigReturnsError(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	err := serveHistorian(cmd, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, exitConfigurationInvalid, ExitCode(err))
}
