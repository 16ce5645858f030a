package cli

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbase/tiermem-go/internal/replay"
	"github.com/oceanbase/tiermem-go/pkg/core"
)

const script = `
config: {short_term_capacity: 3, long_term_capacity: 3, supported_kinds: [episodic]}
steps:
  - {op: store, kind: episodic, content: hello world, importance: 0.4}
  - op: retrieve
    query: {search: hello}
  - op: consolidate
  - op: stats
`

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&bytes.Buffer{})
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
		formatFlag = "json"
	})
	require.NoError(t, RootCmd.Execute())
	return out.String()
}

func writeScript(t *testing.T) string {
	t.Helper()
	return writeScriptText(t, script)
}

func writeScriptText(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestReplayCommandJSON(t *testing.T) {
	out := execute(t, "replay", writeScript(t))

	var results []replay.StepResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 4)
	assert.NotZero(t, results[0].ID)
	require.Len(t, results[1].Memories, 1)
	assert.Equal(t, "hello world", results[1].Memories[0].Content)
	assert.Equal(t, 1, results[3].Stats.TotalCount)
}

func TestReplayCommandNonStringKeys(t *testing.T) {
	path := writeScriptText(t, `
config: {short_term_capacity: 3, long_term_capacity: 3, supported_kinds: [episodic]}
steps:
  - {op: store, kind: episodic, content: {1: one}, importance: 0.4}
  - op: retrieve
`)
	out := execute(t, "replay", path)

	var results []replay.StepResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	require.Len(t, results[1].Memories, 1)
	assert.Equal(t, map[string]any{"1": "one"}, results[1].Memories[0].Content)
}

func TestWriteJSONReportsEncodeError(t *testing.T) {
	var out bytes.Buffer
	err := writeJSON(&out, []replay.StepResult{{
		Op:       replay.OpRetrieve,
		Memories: []*core.Memory{{Content: math.NaN()}},
	}})
	assert.Error(t, err)
	assert.Empty(t, out.String())
}

func TestReplayCommandText(t *testing.T) {
	out := execute(t, "replay", "--format", "text", writeScript(t))

	assert.Contains(t, out, "store")
	assert.Contains(t, out, "1 results")
	assert.Contains(t, out, "hello world")
	assert.Contains(t, out, "promoted=0 skipped=0")
	assert.Contains(t, out, "short=1 (0.33) long=0 (0.00) total=1")
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("short_term_capacity: 4\nlong_term_capacity: 8\nsupported_kinds: [semantic]\ncan_forget: true\n"), 0o600))

	out := execute(t, "config", "--file", path)

	var config core.Config
	require.NoError(t, json.Unmarshal([]byte(out), &config))
	assert.Equal(t, 4, config.ShortTermCapacity)
	assert.Equal(t, 8, config.LongTermCapacity)
	assert.Equal(t, []core.Kind{core.KindSemantic}, config.SupportedKinds)

	out = execute(t, "config", "--format", "text", "--file", path)
	assert.Contains(t, out, "supported_kinds: semantic")
}

func TestLoadConfigByExtension(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"short_term_capacity": 2, "long_term_capacity": 3, "supported_kinds": ["episodic"]}`), 0o600))

	config, err := loadConfig("", jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 2, config.ShortTermCapacity)

	_, err = loadConfig("", filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "version")
	assert.Contains(t, out, "tiermem dev")
}
