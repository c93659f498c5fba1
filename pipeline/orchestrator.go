package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/cloudchase/model-pipeline/config"
	"github.com/cloudchase/model-pipeline/convert"
	"github.com/cloudchase/model-pipeline/registry"
)

// Converter produces a local artifact for one conversion target.
// *convert.Runner is the real implementation; tests substitute fakes so no
// subprocess is ever spawned.
type Converter interface {
	Convert(ctx context.Context, model config.Model, framework, precision, outputRoot string) (*convert.Artifact, error)
}

// Uploader mirrors a local artifact directory to a remote location.
type Uploader interface {
	Upload(ctx context.Context, localPath, remoteURI string) (string, error)
}

// Options are the per-run knobs.
type Options struct {
	// SkipUpload leaves artifacts local; registered entries get an empty
	// remote URI.
	SkipUpload bool
	// Overwrite forces reconversion even when the registry already has the
	// key. The configuration's conversion.overwrite enables the same thing.
	Overwrite bool
}

// TaskResult is one task's terminal state and, for failures, its cause.
type TaskResult struct {
	Task  Task
	State TaskState
	Err   error
}

// Summary describes a completed (or interrupted) run.
type Summary struct {
	RunID      string
	Experiment string
	Results    []TaskResult
}

// Counts tallies results per terminal state.
func (s *Summary) Counts() map[TaskState]int {
	counts := make(map[TaskState]int)
	for _, r := range s.Results {
		counts[r.State]++
	}
	return counts
}

// Failed returns the results that ended in a failure state.
func (s *Summary) Failed() []TaskResult {
	var failed []TaskResult
	for _, r := range s.Results {
		if r.State == StateConversionFailed || r.State == StateUploadFailed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Orchestrator runs the task list sequentially. It exclusively owns the
// in-memory registry for the duration of a run.
type Orchestrator struct {
	cfg       *config.Config
	reg       *registry.Registry
	converter Converter
	uploader  Uploader
	logger    *log.Logger
}

// New wires an Orchestrator. The registry instance is passed in explicitly;
// there is no ambient shared state.
func New(cfg *config.Config, reg *registry.Registry, converter Converter, uploader Uploader, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		reg:       reg,
		converter: converter,
		uploader:  uploader,
		logger:    logger,
	}
}

// Run executes every planned task to a terminal state. A failing task is
// recorded and skipped; it never stops its siblings. The registry is saved
// after each registered task so partial progress survives a crash. The
// returned error is non-nil only when the run itself could not complete
// (cancellation or a registry persistence failure), never for per-task
// failures.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Summary, error) {
	summary := &Summary{
		RunID:      uuid.NewString(),
		Experiment: o.cfg.ExperimentName,
	}
	overwrite := opts.Overwrite || o.cfg.Conversion.Overwrite

	tasks := Plan(o.cfg)
	o.logger.Info("starting conversion run",
		"run_id", summary.RunID, "experiment", o.cfg.ExperimentName, "tasks", len(tasks))

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			// Interrupted: the registry stays in its last-saved state and
			// the in-flight task leaves no partial record.
			return summary, fmt.Errorf("run interrupted: %w", err)
		}
		result := o.runTask(ctx, task, opts, overwrite)
		summary.Results = append(summary.Results, result)

		if result.State == StateRegistered {
			if err := o.reg.Save(o.cfg.ModelRegistry); err != nil {
				return summary, fmt.Errorf("persist registry: %w", err)
			}
		}
	}

	counts := summary.Counts()
	o.logger.Info("conversion run finished",
		"run_id", summary.RunID,
		"registered", counts[StateRegistered],
		"skipped", counts[StateSkipped],
		"failed", len(summary.Failed()))
	return summary, nil
}

func (o *Orchestrator) runTask(ctx context.Context, task Task, opts Options, overwrite bool) TaskResult {
	logger := o.logger.With(
		"model", task.Model.Name, "framework", task.Framework, "precision", task.Precision)

	if existing := o.reg.Find(task.Model.Name, task.Framework, task.Precision); existing != nil && !overwrite {
		logger.Info("already registered, skipping")
		return TaskResult{Task: task, State: StateSkipped}
	}

	if overwrite {
		if _, err := os.Stat(task.OutputDir); err == nil {
			logger.Info("removing previous conversion output", "dir", task.OutputDir)
			if err := os.RemoveAll(task.OutputDir); err != nil {
				return TaskResult{Task: task, State: StateConversionFailed,
					Err: fmt.Errorf("remove stale output: %w", err)}
			}
		}
	}

	artifact, err := o.converter.Convert(ctx, task.Model, task.Framework, task.Precision, o.cfg.Conversion.LocalCache)
	if err != nil {
		logger.Error("conversion failed", "err", err)
		return TaskResult{Task: task, State: StateConversionFailed, Err: err}
	}

	remoteURI := ""
	if !opts.SkipUpload {
		remoteURI, err = o.uploader.Upload(ctx, artifact.OutputDir, task.RemoteURI)
		if err != nil {
			logger.Error("upload failed", "err", err)
			return TaskResult{Task: task, State: StateUploadFailed, Err: err}
		}
	}

	o.reg.Upsert(registry.Entry{
		ModelName:         task.Model.Name,
		Framework:         task.Framework,
		Precision:         task.Precision,
		Task:              task.Model.Task,
		Revision:          task.Model.Revision,
		LocalPath:         artifact.OutputDir,
		RemoteURI:         remoteURI,
		ConvertedAt:       artifact.ConvertedAt,
		Status:            registry.StatusRegistered,
		ConversionCommand: artifact.Command,
	})
	logger.Info("registered artifact", "local", artifact.OutputDir, "remote", remoteURI)
	return TaskResult{Task: task, State: StateRegistered}
}
