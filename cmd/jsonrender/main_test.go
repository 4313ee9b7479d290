package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the settings file and environment at empty values.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"JSONRENDER_LOG_LEVEL", "JSONRENDER_CATALOG_PATH", "JSONRENDER_VALIDATION", "JSONRENDER_METRICS"} {
		t.Setenv(k, "")
	}
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	isolate(t)
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRender(t *testing.T) {
	out, _, err := run(t, "", "render", "testdata/orders.yaml", "--data", "testdata/data.json")
	require.NoError(t, err)
	assert.Equal(t, "== Orders ==\n  5\n  [ Save ]\n  [ Remove ]\n", out)
}

func TestRender_Metrics(t *testing.T) {
	_, errOut, err := run(t, "", "render", "testdata/invalid.json", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, errOut, "jsonrender_renders_total 1")
	assert.Contains(t, errOut, `jsonrender_element_fallbacks_total{type="Chart"} 1`)
	assert.Contains(t, errOut, "jsonrender_pool_active_actions 0")
}

func TestBuiltinActionDefs(t *testing.T) {
	defs, err := builtinActionDefs()
	require.NoError(t, err)
	assert.Len(t, defs, 4)
	assert.Contains(t, defs, "log")
	assert.Equal(t, "Fail unless params.value matches the params.pattern regex", defs["assert.matches"].Description)
}

func TestValidate(t *testing.T) {
	out, _, err := run(t, "", "validate", "testdata/orders.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "tree is valid")

	out, _, err = run(t, "", "validate", "testdata/invalid.json")
	require.Error(t, err)
	assert.Contains(t, out, "/elements/chart/type [NOT_FOUND]")
	assert.Contains(t, out, "/elements/card/children/1 [NOT_FOUND]")
}

func decodeSnapshot(t *testing.T, out string) map[string]any {
	t.Helper()
	var snap map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	return snap
}

func TestAct_Success(t *testing.T) {
	out, _, err := run(t, "", "act", "testdata/orders.yaml", "save", "--data", "testdata/data.json")
	require.NoError(t, err)

	snap := decodeSnapshot(t, out)
	assert.Equal(t, true, snap["saved"])
}

func TestAct_ConfirmedErrorContinuation(t *testing.T) {
	out, _, err := run(t, "", "act", "testdata/orders.yaml", "remove", "--data", "testdata/data.json", "--yes")
	require.NoError(t, err)

	snap := decodeSnapshot(t, out)
	assert.Equal(t, "locked", snap["error"])
}

func TestAct_Prompt(t *testing.T) {
	out, _, err := run(t, "n\n", "act", "testdata/orders.yaml", "remove", "--data", "testdata/data.json")
	require.NoError(t, err)
	assert.Contains(t, out, "Remove 5 orders?")
	assert.Contains(t, out, "declined")

	out, _, err = run(t, "yes\n", "act", "testdata/orders.yaml", "remove", "--data", "testdata/data.json")
	require.NoError(t, err)
	assert.Contains(t, out, `"error": "locked"`)
}

func TestAct_UnknownElement(t *testing.T) {
	_, _, err := run(t, "", "act", "testdata/orders.yaml", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestInspect(t *testing.T) {
	out, _, err := run(t, "", "inspect", "testdata/data.json", "--query", ".orders.ids[]")
	require.NoError(t, err)
	assert.Equal(t, "\"a\"\n\"b\"\n", out)

	_, _, err = run(t, "", "inspect", "testdata/data.json", "--query", ".orders[")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestLoadConfig(t *testing.T) {
	settings := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(settings, []byte(`{"log_level":"debug","catalog_path":"a.yaml","metrics":true}`), 0o600))
	env := map[string]string{"JSONRENDER_CATALOG_PATH": "b.yaml", "JSONRENDER_VALIDATION": "warn"}

	cfg := loadConfig(settings, func(k string) string { return env[k] })

	assert.Equal(t, Config{LogLevel: "debug", CatalogPath: "b.yaml", Validation: "warn", Metrics: true}, cfg)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadConfig(filepath.Join(t.TempDir(), "missing.json"), func(string) string { return "" })
	assert.Equal(t, defaultConfig(), cfg)
}

func TestGraph(t *testing.T) {
	out, _, err := run(t, "", "graph", "testdata/invalid.json")
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "class el_chart invalid")
	assert.Contains(t, out, `missing_card_ghost{{"ghost (missing)"}}`)

	out, _, err = run(t, "", "graph", "testdata/orders.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "el_save -.->|action| act_save_action")
	assert.Contains(t, out, `act_remove_action_onError_set[["set error"]]`)
}
