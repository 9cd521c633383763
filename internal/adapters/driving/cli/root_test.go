package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "docassist", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_HasVerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
	assert.Equal(t, "false", flag.DefValue)
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ingest", "search", "chat", "documents", "models", "watch", "mcp", "config", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestNeedsServices(t *testing.T) {
	assert.False(t, needsServices(versionCmd))
	assert.False(t, needsServices(&cobra.Command{Use: "help"}))
	assert.True(t, needsServices(searchCmd))
	assert.True(t, needsServices(configGetCmd))
}

func TestSetup_WiringErrorStopsCommand(t *testing.T) {
	setupTestServices(t)
	wire = func(*cobra.Command) error { return errors.New("cannot open store") }

	_, err := run(t, "", "documents", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open store")
}

func TestTopK(t *testing.T) {
	setupTestServices(t)

	settings.TopK = 0
	assert.Equal(t, 3, topK(0))

	settings.TopK = 6
	assert.Equal(t, 6, topK(0))
	assert.Equal(t, 2, topK(2))
}

func TestLoadIndex_RebuildsOnce(t *testing.T) {
	ts := setupTestServices(t)
	require.NoError(t, wire(searchCmd))

	require.NoError(t, loadIndex(searchCmd))
	require.NoError(t, loadIndex(searchCmd))

	assert.Equal(t, 1, ts.documents.rebuilds)
}

func TestLoadIndex_IndexesSavedPrompts(t *testing.T) {
	ts := setupTestServices(t)
	_, err := ts.prompts.CreatePrompt(context.Background(), domain.Prompt{Text: "How do I rotate keys?"})
	require.NoError(t, err)
	require.NoError(t, wire(searchCmd))
	searchCmd.SetContext(context.Background())

	require.NoError(t, loadIndex(searchCmd))

	assert.Equal(t, []string{"How do I rotate keys?"}, ts.retrieval.added)
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("")
	assert.Equal(t, original, version)

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}
