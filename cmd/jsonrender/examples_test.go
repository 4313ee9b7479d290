package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const examplesDir = "../../examples"

func TestExamples(t *testing.T) {
	entries, err := os.ReadDir(examplesDir)
	require.NoError(t, err)

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(examplesDir, e.Name())
		t.Run(e.Name(), func(t *testing.T) {
			catalog := filepath.Join(dir, "catalog.yaml")
			tree := filepath.Join(dir, "tree.yaml")
			data := filepath.Join(dir, "data.json")

			out, _, err := run(t, "", "validate", tree, "--catalog", catalog)
			require.NoError(t, err, out)

			out, _, err = run(t, "", "render", tree, "--catalog", catalog, "--data", data)
			require.NoError(t, err)
			assert.NotContains(t, out, "invalid props")
		})
	}
}

func TestExamples_SupportTicket(t *testing.T) {
	dir := filepath.Join(examplesDir, "support-ticket")
	catalog := filepath.Join(dir, "catalog.yaml")
	tree := filepath.Join(dir, "tree.yaml")
	data := filepath.Join(dir, "data.json")

	out, _, err := run(t, "", "render", tree, "--catalog", catalog, "--data", data)
	require.NoError(t, err)
	want := "== Login fails after password reset ==\n" +
		"T-1042\n" +
		"  (open)\n" +
		"  Customer reports a loop back to the login page.\n" +
		"  [WARNING] SLA: 4h remaining\n" +
		"  [ Resolve ]  [ Escalate ]\n"
	assert.Equal(t, want, out)

	out, _, err = run(t, "", "act", tree, "resolve", "--catalog", catalog, "--data", data, "--yes")
	require.NoError(t, err)
	assert.Equal(t, "resolved", decodeSnapshot(t, out)["ticket_status"])

	out, _, err = run(t, "", "act", tree, "escalate", "--catalog", catalog, "--data", data)
	require.NoError(t, err)
	assert.Equal(t, "Could not escalate: escalation queue is full", decodeSnapshot(t, out)["last_error"])
}
