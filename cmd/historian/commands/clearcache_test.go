package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewood/historian/internal/cachestore"
	"github.com/bramblewood/historian/internal/domain"
)

func writeTestConfig(t *testing.T, cacheRoot string) string {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	contents := "repository:\n  path: " + dir + "\ncache:\n  root: " + cacheRoot + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(contents), 0o600))

	return configPath
}

func TestClearCache_RemovesAllNamespaces(t *testing.T) {
	t.Parallel()

	cacheRoot := t.TempDir()
	configPath := writeTestConfig(t, cacheRoot)

	store := cachestore.NewStore(cacheRoot)
	for _, ns := range []domain.Namespace{
		domain.NamespaceCommit,
		domain.NamespaceDaily,
		domain.NamespaceWeeklyNarrative,
		domain.NamespaceWeeklyChangelog,
	} {
		require.NoError(t, store.Put(ns, []byte("key-"+string(ns)), []byte(`{"v":1}`)))
	}

	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	require.NoError(t, clearCache(cmd, configPath))

	for _, ns := range []domain.Namespace{
		domain.NamespaceCommit,
		domain.NamespaceDaily,
		domain.NamespaceWeeklyNarrative,
		domain.NamespaceWeeklyChangelog,
	} {
		entries, err := os.ReadDir(filepath.Join(cacheRoot, string(ns)))
		assert.True(t, os.IsNotExist(err) || len(entries) == 0)
	}

	assert.Contains(t, out.String(), cacheRoot)
}

func TestClearCache_InvalidConfigReturnsError(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	err := clearCache(cmd, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
