// Package hub downloads model snapshots from the model hub by shelling out
// to the huggingface-cli download client.
package hub

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/cloudchase/model-pipeline/tools"
)

const defaultTool = "huggingface-cli"

// DownloadError reports a failed hub download.
type DownloadError struct {
	Model         string
	ExitCode      int
	StderrExcerpt string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download of %s failed with exit code %d: %s",
		e.Model, e.ExitCode, e.StderrExcerpt)
}

// Downloader fetches hub snapshots into local directories.
type Downloader struct {
	runner tools.Runner
	logger *log.Logger
	tool   string
}

// NewDownloader creates a Downloader backed by the given command runner.
func NewDownloader(runner tools.Runner, logger *log.Logger) *Downloader {
	return &Downloader{runner: runner, logger: logger, tool: defaultTool}
}

// Command returns the argv (without the tool name) used to download the
// model at the given revision into destDir.
func (d *Downloader) Command(model, revision, destDir string) []string {
	return []string{"download", model, "--revision", revision, "--local-dir", destDir}
}

// Tool returns the download client's executable name.
func (d *Downloader) Tool() string { return d.tool }

// Download fetches the model snapshot into destDir, creating it first.
func (d *Downloader) Download(ctx context.Context, model, revision, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create download dir %s: %w", destDir, err)
	}

	d.logger.Info("downloading model snapshot", "model", model, "revision", revision, "dest", destDir)
	res, err := d.runner.Run(ctx, d.tool, d.Command(model, revision, destDir)...)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", d.tool, err)
	}
	if res.ExitCode != 0 {
		return &DownloadError{
			Model:         model,
			ExitCode:      res.ExitCode,
			StderrExcerpt: res.StderrExcerpt(),
		}
	}
	return nil
}
