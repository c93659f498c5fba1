package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExperimentConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := `
experiment_name: cmd-test
model_bucket: s3://bucket/models
model_registry: ` + filepath.Join(dir, "registry.yaml") + `
conversion:
  frameworks: [onnx-runtime]
models:
  - name: bert-base-uncased
    task: text-classification
`
	path := filepath.Join(dir, "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestPlanCommand(t *testing.T) {
	err := runPlan(planCmd, []string{writeExperimentConfig(t)})
	require.NoError(t, err)
}

func TestPlanCommand_MissingConfig(t *testing.T) {
	err := runPlan(planCmd, []string{filepath.Join(t.TempDir(), "absent.yaml")})
	require.Error(t, err)
}

func TestListCommand_EmptyRegistry(t *testing.T) {
	listFramework = ""
	err := runList(listCmd, []string{writeExperimentConfig(t)})
	require.NoError(t, err)
}

func TestInfoCommand_UnknownKey(t *testing.T) {
	err := runInfo(infoCmd, []string{writeExperimentConfig(t), "bert-base-uncased", "onnx-runtime", "fp32"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no artifact registered")
}

func TestRunCommand_BadConfigFailsBeforeAnyTask(t *testing.T) {
	err := runRun(runCmd, []string{filepath.Join(t.TempDir(), "absent.yaml")})
	require.Error(t, err)
}
