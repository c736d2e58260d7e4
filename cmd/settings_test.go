package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	createMissing = false
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSettingsCLI_SetThenGet(t *testing.T) {
	db := filepath.Join(t.TempDir(), "antiraid.db")
	common := []string{"--env-file", "", "--store", "database", "--db-driver", "sqlite", "--db-name", db}

	out, err := runCLI(t, append([]string{"settings", "get"}, append(common, "guild-1", "joinLimit")...)...)
	assert.Error(t, err, "unknown guilds need --create")
	assert.Contains(t, out, "Unable to set your guild settings for antiraid.")

	out, err = runCLI(t, append([]string{"settings", "set", "--create"}, append(common, "guild-1", "notifyMessage", "Raid", "incoming!")...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "The notifyMessage antiraid setting has been set to 'Raid incoming!'.")

	out, err = runCLI(t, append([]string{"settings", "get"}, append(common, "guild-1", "notifyMessage")...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "That notifyMessage antiraid setting is currently set to 'Raid incoming!'.")

	out, err = runCLI(t, append([]string{"settings", "list"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "guild-1")
	assert.Contains(t, out, "1 guilds")
}
