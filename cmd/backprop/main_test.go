package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runConfig = `
architecture: [2, 2, 1]
learning_rate: 0.5
target_error: -1
max_epochs: 3
seed: 11
samples:
  - input: [0, 1]
    expected: [1]
  - input: [1, 1]
    expected: [0]
`

func writeConfig(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(runConfig), 0o600))
	return dir, path
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"version"}, &out, &out))
	assert.Equal(t, "backprop "+version+"\n", out.String())
}

func TestRun_Usage(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, run(nil, &out, &errOut))
	assert.Contains(t, out.String(), "Commands:")

	err := run([]string{"bogus"}, &out, &errOut)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, errOut.String(), `unknown command "bogus"`)
}

func TestRun_TrainInferInspectEval(t *testing.T) {
	dir, cfgPath := writeConfig(t)
	model := filepath.Join(dir, "m.bpnn")
	jsonPath := filepath.Join(dir, "m.json")

	var out, logs bytes.Buffer
	require.NoError(t, run([]string{"train", "-config", cfgPath, "-out", model, "-json", jsonPath}, &out, &logs))
	assert.Contains(t, out.String(), "epochs: 3")
	assert.Equal(t, 3, strings.Count(logs.String(), "msg=epoch"))
	assert.FileExists(t, model)
	assert.FileExists(t, jsonPath)

	out.Reset()
	require.NoError(t, run([]string{"infer", "-model", model, "-input", "0, 1"}, &out, &logs))
	assert.True(t, strings.HasPrefix(out.String(), "["))

	out.Reset()
	require.NoError(t, run([]string{"inspect", "-model", model}, &out, &logs))
	assert.Contains(t, out.String(), "sizes:    [2 2 1]")
	assert.Contains(t, out.String(), "training: epochs=3")
	assert.Contains(t, out.String(), "layer 2")

	out.Reset()
	require.NoError(t, run([]string{"eval", "-config", cfgPath, "-model", model}, &out, &logs))
	assert.Contains(t, out.String(), "samples:  2")
}

func TestRun_Errors(t *testing.T) {
	dir, cfgPath := writeConfig(t)
	model := filepath.Join(dir, "m.bpnn")
	var out, logs bytes.Buffer

	assert.ErrorIs(t, run([]string{"train"}, &out, &logs), errUsage)
	assert.ErrorIs(t, run([]string{"eval", "-model", model}, &out, &logs), errUsage)
	assert.Error(t, run([]string{"infer", "-model", model, "-input", "1,2"}, &out, &logs), "missing model")

	require.NoError(t, run([]string{"train", "-config", cfgPath, "-out", model}, &out, &logs))
	assert.Error(t, run([]string{"infer", "-model", model, "-input", "1,2,3"}, &out, &logs), "wrong width")
	assert.Error(t, run([]string{"infer", "-model", model, "-input", "1,x"}, &out, &logs))
	assert.Error(t, run([]string{"infer", "-model", model}, &out, &logs))
}

func TestParseVector(t *testing.T) {
	v, err := parseVector(" 1, 2.5,-3 ")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, -3}, v)
	assert.Equal(t, "[1, 2.5, -3]", formatVector(v))
}
