package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
experiment_name: bert-conversion
model_bucket: s3://ml-models/converted
model_registry: artifacts/registry.yaml
conversion:
  frameworks: [onnx-runtime, openvino]
  precisions: [fp32, fp16]
  overwrite: true
  local_cache: /tmp/cache
models:
  - name: bert-base-uncased
    task: text-classification
    source: google-bert/bert-base-uncased
    revision: abc123
    extra_options:
      opset: "17"
  - name: distilbert-base-uncased
    task: question-answering
    frameworks: [transformers]
    precisions: [fp32]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bert-conversion", cfg.ExperimentName)
	assert.Equal(t, "s3://ml-models/converted", cfg.ModelBucket)
	assert.Equal(t, "artifacts/registry.yaml", cfg.ModelRegistry)
	assert.Equal(t, []string{"onnx-runtime", "openvino"}, cfg.Conversion.Frameworks)
	assert.Equal(t, []string{"fp32", "fp16"}, cfg.Conversion.Precisions)
	assert.True(t, cfg.Conversion.Overwrite)
	assert.Equal(t, "/tmp/cache", cfg.Conversion.LocalCache)

	require.Len(t, cfg.Models, 2)
	bert := cfg.Models[0]
	assert.Equal(t, "bert-base-uncased", bert.Name)
	assert.Equal(t, "google-bert/bert-base-uncased", bert.HubID())
	assert.Equal(t, "abc123", bert.Revision)
	assert.Equal(t, "17", bert.ExtraOptions["opset"])

	distil := cfg.Models[1]
	assert.Equal(t, "distilbert-base-uncased", distil.HubID())
	assert.Equal(t, "main", distil.Revision)
	assert.Equal(t, []string{"transformers"}, cfg.FrameworksFor(distil))
	assert.Equal(t, []string{"onnx-runtime", "openvino"}, cfg.FrameworksFor(bert))
	assert.Equal(t, []string{"fp32"}, cfg.PrecisionsFor(distil))
	assert.Equal(t, []string{"fp32", "fp16"}, cfg.PrecisionsFor(bert))
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
experiment_name: minimal
model_bucket: s3://bucket
model_registry: registry.yaml
conversion:
  frameworks: [onnx-runtime]
models:
  - name: bert-base-uncased
    task: text-classification
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"fp32"}, cfg.Conversion.Precisions)
	assert.Equal(t, "artifacts/converted_models", cfg.Conversion.LocalCache)
	assert.Equal(t, "main", cfg.Models[0].Revision)
	assert.False(t, cfg.Conversion.Overwrite)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "models: [unterminated")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_ValidationErrors(t *testing.T) {
	path := writeConfig(t, `
experiment_name: ""
model_bucket: s3://bucket
model_registry: ""
conversion:
  frameworks: [tensorrt]
models:
  - name: ""
    task: ""
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "experiment_name is required")
	assert.Contains(t, err.Error(), "model_registry is required")
	assert.Contains(t, err.Error(), `unsupported framework "tensorrt"`)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "task is required")
}

func TestLoad_NoModels(t *testing.T) {
	path := writeConfig(t, `
experiment_name: empty
model_bucket: s3://bucket
model_registry: registry.yaml
conversion:
  frameworks: [onnx-runtime]
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one model is required")
}
