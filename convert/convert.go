// Package convert turns a configured model into an on-disk artifact for one
// (framework, precision) target by driving the external exporter tools.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cloudchase/model-pipeline/config"
	"github.com/cloudchase/model-pipeline/hub"
	"github.com/cloudchase/model-pipeline/tools"
)

const exporterTool = "optimum-cli"

// ConversionError reports an exporter subprocess that exited non-zero.
type ConversionError struct {
	Model         string
	Framework     string
	ExitCode      int
	StderrExcerpt string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion of %s to %s failed with exit code %d: %s",
		e.Model, e.Framework, e.ExitCode, e.StderrExcerpt)
}

// IncompleteError reports an exporter that exited zero but left the output
// directory missing or empty.
type IncompleteError struct {
	Model     string
	Framework string
	OutputDir string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("conversion of %s to %s produced no output in %s",
		e.Model, e.Framework, e.OutputDir)
}

// Artifact is the normalized record of one completed conversion.
type Artifact struct {
	ModelName   string
	Framework   string
	Precision   string
	OutputDir   string
	Command     string
	ConvertedAt time.Time
}

// Runner converts models by invoking the appropriate external tool per
// framework. Retries are deliberately not its concern.
type Runner struct {
	exec       tools.Runner
	downloader *hub.Downloader
	logger     *log.Logger
}

// NewRunner creates a conversion Runner.
func NewRunner(exec tools.Runner, downloader *hub.Downloader, logger *log.Logger) *Runner {
	return &Runner{exec: exec, downloader: downloader, logger: logger}
}

// SanitizeModelName makes a hub id usable as a single path segment.
func SanitizeModelName(name string) string {
	return strings.ReplaceAll(name, "/", "-")
}

// OutputDir returns the deterministic artifact directory for a target:
// <root>/<sanitized-model>/<framework>/<precision>.
func OutputDir(root, modelName, framework, precision string) string {
	return filepath.Join(root, SanitizeModelName(modelName), framework, precision)
}

// Convert produces the artifact for one (model, framework, precision)
// target under outputRoot. On a non-zero exporter exit it returns a
// ConversionError; on an empty output directory an IncompleteError.
func (r *Runner) Convert(ctx context.Context, model config.Model, framework, precision, outputRoot string) (*Artifact, error) {
	if !config.IsSupportedFramework(framework) {
		return nil, fmt.Errorf("unsupported framework %q", framework)
	}

	outDir := OutputDir(outputRoot, model.Name, framework, precision)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", outDir, err)
	}

	r.logger.Info("converting model",
		"model", model.Name, "framework", framework, "precision", precision, "output", outDir)

	var command string
	var err error
	if framework == config.FrameworkTransformers {
		command, err = r.fetchSnapshot(ctx, model, precision, outDir)
	} else {
		command, err = r.export(ctx, model, framework, precision, outDir)
	}
	if err != nil {
		return nil, err
	}

	if empty, err := dirIsEmpty(outDir); err != nil {
		return nil, fmt.Errorf("inspect output dir %s: %w", outDir, err)
	} else if empty {
		return nil, &IncompleteError{Model: model.Name, Framework: framework, OutputDir: outDir}
	}

	return &Artifact{
		ModelName:   model.Name,
		Framework:   framework,
		Precision:   precision,
		OutputDir:   outDir,
		Command:     command,
		ConvertedAt: time.Now().UTC(),
	}, nil
}

// fetchSnapshot handles the transformers target: the native weights are the
// artifact, so conversion degenerates to a hub download.
func (r *Runner) fetchSnapshot(ctx context.Context, model config.Model, precision string, outDir string) (string, error) {
	if precision != "fp32" {
		r.logger.Warn("precision not acknowledged by hub download, artifact keeps native precision",
			"model", model.Name, "precision", precision)
	}

	command := tools.CommandString(r.downloader.Tool(), r.downloader.Command(model.HubID(), model.Revision, outDir))
	if err := r.downloader.Download(ctx, model.HubID(), model.Revision, outDir); err != nil {
		var dlErr *hub.DownloadError
		if errors.As(err, &dlErr) {
			return "", &ConversionError{
				Model:         model.Name,
				Framework:     config.FrameworkTransformers,
				ExitCode:      dlErr.ExitCode,
				StderrExcerpt: dlErr.StderrExcerpt,
			}
		}
		return "", err
	}
	return command, nil
}

// export handles the optimum-cli targets.
func (r *Runner) export(ctx context.Context, model config.Model, framework, precision, outDir string) (string, error) {
	args := exportArgs(model, framework, precision, outDir)
	r.warnUnacknowledgedPrecision(model.Name, framework, precision)

	res, err := r.exec.Run(ctx, exporterTool, args...)
	if err != nil {
		return "", fmt.Errorf("invoke %s: %w", exporterTool, err)
	}
	if res.ExitCode != 0 {
		return "", &ConversionError{
			Model:         model.Name,
			Framework:     framework,
			ExitCode:      res.ExitCode,
			StderrExcerpt: res.StderrExcerpt(),
		}
	}
	return tools.CommandString(exporterTool, args), nil
}

// exportFormats maps framework names to optimum-cli export subcommands.
var exportFormats = map[string]string{
	config.FrameworkONNXRuntime: "onnx",
	config.FrameworkOpenVINO:    "openvino",
}

func exportArgs(model config.Model, framework, precision, outDir string) []string {
	args := []string{
		"export", exportFormats[framework],
		"--model", model.HubID(),
		"--task", model.Task,
		"--revision", model.Revision,
	}
	args = append(args, precisionArgs(framework, precision)...)

	// Extra options are appended in key order so the recorded command is
	// stable across runs.
	keys := make([]string, 0, len(model.ExtraOptions))
	for k := range model.ExtraOptions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--"+k, model.ExtraOptions[k])
	}

	return append(args, outDir)
}

// precisionArgs returns the exporter flags for a requested precision.
// fp32 is every exporter's default and needs no flag.
func precisionArgs(framework, precision string) []string {
	if framework == config.FrameworkOpenVINO && precision == "fp16" {
		return []string{"--fp16"}
	}
	return nil
}

// precisionAcknowledged reports whether the exporter has a flag (or default)
// honoring the requested precision. When it does not, the precision remains
// a path-naming convention and the runner warns rather than failing.
func precisionAcknowledged(framework, precision string) bool {
	if precision == "fp32" {
		return true
	}
	return len(precisionArgs(framework, precision)) > 0
}

func (r *Runner) warnUnacknowledgedPrecision(model, framework, precision string) {
	if !precisionAcknowledged(framework, precision) {
		r.logger.Warn("precision not acknowledged by exporter, forwarding as path tag only",
			"model", model, "framework", framework, "precision", precision)
	}
}

func dirIsEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return len(entries) == 0, nil
}
