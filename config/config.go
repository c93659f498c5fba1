package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported target frameworks. "transformers" means the native hub weights
// are fetched as-is; the other two are exported through optimum-cli.
const (
	FrameworkTransformers = "transformers"
	FrameworkONNXRuntime  = "onnx-runtime"
	FrameworkOpenVINO     = "openvino"
)

// SupportedFrameworks lists every framework the conversion runner knows how
// to produce.
var SupportedFrameworks = []string{
	FrameworkTransformers,
	FrameworkONNXRuntime,
	FrameworkOpenVINO,
}

const (
	defaultRevision   = "main"
	defaultPrecision  = "fp32"
	defaultLocalCache = "artifacts/converted_models"
)

// Model describes one source model and the task it was trained for.
type Model struct {
	Name     string `yaml:"name"`
	Task     string `yaml:"task"`
	Source   string `yaml:"source,omitempty"`
	Revision string `yaml:"revision,omitempty"`

	// Per-model overrides for the experiment-wide conversion matrix.
	Frameworks []string `yaml:"frameworks,omitempty"`
	Precisions []string `yaml:"precisions,omitempty"`

	// Extra flags forwarded verbatim to the exporter, e.g. opset: "17"
	// becomes "--opset 17".
	ExtraOptions map[string]string `yaml:"extra_options,omitempty"`
}

// HubID returns the hub identifier passed to the download and export tools.
// Source takes precedence so a model can be registered under a short name.
func (m Model) HubID() string {
	if m.Source != "" {
		return m.Source
	}
	return m.Name
}

// Conversion holds the experiment-wide conversion options.
type Conversion struct {
	Frameworks []string `yaml:"frameworks"`
	Precisions []string `yaml:"precisions"`
	Overwrite  bool     `yaml:"overwrite"`
	LocalCache string   `yaml:"local_cache"`
}

// Config is the top-level experiment configuration.
type Config struct {
	ExperimentName string     `yaml:"experiment_name"`
	ModelBucket    string     `yaml:"model_bucket"`
	ModelRegistry  string     `yaml:"model_registry"`
	Conversion     Conversion `yaml:"conversion"`
	Models         []Model    `yaml:"models"`
}

// Load reads and validates an experiment configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Conversion.LocalCache == "" {
		c.Conversion.LocalCache = defaultLocalCache
	}
	if len(c.Conversion.Precisions) == 0 {
		c.Conversion.Precisions = []string{defaultPrecision}
	}
	for i := range c.Models {
		if c.Models[i].Revision == "" {
			c.Models[i].Revision = defaultRevision
		}
	}
}

func (c *Config) validate() error {
	var problems []string

	if c.ExperimentName == "" {
		problems = append(problems, "experiment_name is required")
	}
	if c.ModelRegistry == "" {
		problems = append(problems, "model_registry is required")
	}
	if len(c.Models) == 0 {
		problems = append(problems, "at least one model is required")
	}
	if len(c.Conversion.Frameworks) == 0 {
		problems = append(problems, "conversion.frameworks must not be empty")
	}

	for _, fw := range c.Conversion.Frameworks {
		if !IsSupportedFramework(fw) {
			problems = append(problems, fmt.Sprintf(
				"unsupported framework %q (supported: %s)",
				fw, strings.Join(SupportedFrameworks, ", ")))
		}
	}
	for _, p := range c.Conversion.Precisions {
		if p == "" {
			problems = append(problems, "conversion.precisions must not contain empty entries")
		}
	}

	for i, m := range c.Models {
		if m.Name == "" {
			problems = append(problems, fmt.Sprintf("models[%d]: name is required", i))
		}
		if m.Task == "" {
			problems = append(problems, fmt.Sprintf("models[%d] (%s): task is required", i, m.Name))
		}
		for _, fw := range m.Frameworks {
			if !IsSupportedFramework(fw) {
				problems = append(problems, fmt.Sprintf(
					"models[%d] (%s): unsupported framework %q", i, m.Name, fw))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

// IsSupportedFramework reports whether fw is a known conversion target.
func IsSupportedFramework(fw string) bool {
	for _, s := range SupportedFrameworks {
		if fw == s {
			return true
		}
	}
	return false
}

// FrameworksFor returns the conversion targets for a model, falling back to
// the experiment-wide list when the model carries no override.
func (c *Config) FrameworksFor(m Model) []string {
	if len(m.Frameworks) > 0 {
		return m.Frameworks
	}
	return c.Conversion.Frameworks
}

// PrecisionsFor returns the precision tags for a model, falling back to the
// experiment-wide list when the model carries no override.
func (c *Config) PrecisionsFor(m Model) []string {
	if len(m.Precisions) > 0 {
		return m.Precisions
	}
	return c.Conversion.Precisions
}
