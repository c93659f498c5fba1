package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cloudchase/model-pipeline/config"
	"github.com/cloudchase/model-pipeline/pipeline"
)

var planCmd = &cobra.Command{
	Use:   "plan <config>",
	Short: "Show the planned conversion tasks",
	Long:  "List every (model, framework, precision) combination the configuration expands to, without converting anything.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

func runPlan(_ *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}

	tasks := pipeline.Plan(cfg)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tFRAMEWORK\tPRECISION\tOUTPUT\tREMOTE")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			t.Model.Name, t.Framework, t.Precision, t.OutputDir, t.RemoteURI)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d tasks planned\n", len(tasks))
	return nil
}
