package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cloudchase/model-pipeline/config"
	"github.com/cloudchase/model-pipeline/convert"
	"github.com/cloudchase/model-pipeline/hub"
	"github.com/cloudchase/model-pipeline/pipeline"
	"github.com/cloudchase/model-pipeline/registry"
	"github.com/cloudchase/model-pipeline/storage"
	"github.com/cloudchase/model-pipeline/tools"
)

var (
	runSkipUpload bool
	runOverwrite  bool
)

var runCmd = &cobra.Command{
	Use:   "run <config>",
	Short: "Run the conversion pipeline",
	Long: `Convert every configured (model, framework, precision) combination,
upload the artifacts to the model bucket, and record the results in the
registry. A failing combination is reported and skipped; the rest of the run
proceeds. The exit code reflects only whether the run itself completed.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runSkipUpload, "skip-upload", false, "Do not upload converted artifacts to the bucket")
	runCmd.Flags().BoolVar(&runOverwrite, "overwrite", false, "Reconvert combinations that are already registered")
}

func runRun(_ *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	reg, err := registry.Load(cfg.ModelRegistry)
	if err != nil {
		return err
	}

	exec := tools.NewExecRunner(logger)
	downloader := hub.NewDownloader(exec, logger)
	converter := convert.NewRunner(exec, downloader, logger)
	uploader := storage.NewUploader(exec, logger)
	orch := pipeline.New(cfg, reg, converter, uploader, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, runErr := orch.Run(ctx, pipeline.Options{
		SkipUpload: runSkipUpload,
		Overwrite:  runOverwrite,
	})
	printSummary(summary)

	if runErr != nil {
		return fmt.Errorf("run did not complete: %w", runErr)
	}
	return nil
}
