package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/droidctl/internal/droid"
)

func TestListCommand_EmptyDirectories(t *testing.T) {
	resetFlags()
	userDir, projectDir := testDirs(t)

	out, err := runCommand(t, "", "list", "--user-dir", userDir, "--project-dir", projectDir)
	require.NoError(t, err)
	assert.Contains(t, out, "No droids found")
}

func TestListCommand_Table(t *testing.T) {
	resetFlags()
	userDir, projectDir := testDirs(t)
	writeDroid(t, userDir, "alpha.md", "---\nname: alpha\ndescription: First helper\n---\nBody.\n")
	writeDroid(t, userDir, "beta.md", "---\nname: beta\ndescription: Second helper\nproactive: true\n---\nBody.\n")
	writeDroid(t, projectDir, "beta.md", "---\nname: beta\ndescription: Project beta\n---\nOverride.\n")

	out, err := runCommand(t, "", "list", "--user-dir", userDir, "--project-dir", projectDir)
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "SCOPE")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "Project beta", "project override should replace the user droid")
	assert.NotContains(t, out, "Second helper")
}

func TestListCommand_VerboseJSON(t *testing.T) {
	resetFlags()
	userDir, projectDir := testDirs(t)
	writeDroid(t, userDir, "alpha.md", "---\nname: alpha\ndescription: First helper\ntools: [Read]\n---\nPrompt text.\n")

	out, err := runCommand(t, "", "list", "-v", "--user-dir", userDir, "--project-dir", projectDir)
	require.NoError(t, err)

	var droids []droid.Droid
	require.NoError(t, json.Unmarshal([]byte(out), &droids))
	require.Len(t, droids, 1)
	assert.Equal(t, "alpha", droids[0].Name)
	assert.Equal(t, droid.ScopeUser, droids[0].Scope)
	assert.Equal(t, []string{"Read"}, droids[0].Tools)
	assert.Equal(t, "Prompt text.", droids[0].SystemPrompt)
}

func TestFormatListTable_TruncatesDescriptions(t *testing.T) {
	droids := []*droid.Droid{
		{Name: "normal", Scope: droid.ScopeUser, Description: "short"},
		{
			Name:        "wordy",
			Scope:       droid.ScopeProject,
			Proactive:   true,
			Description: "an endlessly repeated description that cannot possibly fit inside a narrow table column",
		},
	}

	table := formatListTable(droids, 60)
	for _, line := range splitDiffLines(table) {
		assert.LessOrEqual(t, len([]rune(line)), 60, "line overflows the table width: %q", line)
	}
	assert.Contains(t, table, "short")
	assert.Contains(t, table, "…")
	assert.Contains(t, table, "yes")
}
