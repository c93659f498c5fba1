// Package pipeline sequences the conversion workflow: plan the
// (model, framework, precision) matrix, convert each combination, optionally
// upload, and commit the results to the registry.
package pipeline

import (
	"github.com/cloudchase/model-pipeline/config"
	"github.com/cloudchase/model-pipeline/convert"
	"github.com/cloudchase/model-pipeline/storage"
)

// TaskState is the lifecycle position of one conversion task.
type TaskState string

const (
	StatePending          TaskState = "PENDING"
	StateConverting       TaskState = "CONVERTING"
	StateConverted        TaskState = "CONVERTED"
	StateConversionFailed TaskState = "CONVERSION_FAILED"
	StateUploading        TaskState = "UPLOADING"
	StateUploaded         TaskState = "UPLOADED"
	StateUploadFailed     TaskState = "UPLOAD_FAILED"
	StateRegistered       TaskState = "REGISTERED"
	StateSkipped          TaskState = "SKIPPED"
)

// Terminal reports whether a task in this state is done for the run.
func (s TaskState) Terminal() bool {
	switch s {
	case StateConversionFailed, StateUploadFailed, StateRegistered, StateSkipped:
		return true
	}
	return false
}

// Task is one planned (model, framework, precision) combination.
type Task struct {
	Model     config.Model
	Framework string
	Precision string

	OutputDir string
	RemoteURI string
}

// Plan expands the configuration into the ordered task list: models in
// configuration order, then frameworks, then precisions. Registry updates
// later apply in this same order, so the persisted file is deterministic.
func Plan(cfg *config.Config) []Task {
	var tasks []Task
	for _, model := range cfg.Models {
		sanitized := convert.SanitizeModelName(model.Name)
		for _, fw := range cfg.FrameworksFor(model) {
			for _, precision := range cfg.PrecisionsFor(model) {
				tasks = append(tasks, Task{
					Model:     model,
					Framework: fw,
					Precision: precision,
					OutputDir: convert.OutputDir(cfg.Conversion.LocalCache, model.Name, fw, precision),
					RemoteURI: storage.RemoteURI(cfg.ModelBucket, sanitized, fw, precision),
				})
			}
		}
	}
	return tasks
}
