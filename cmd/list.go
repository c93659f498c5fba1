package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cloudchase/model-pipeline/config"
	"github.com/cloudchase/model-pipeline/registry"
)

var listFramework string

var listCmd = &cobra.Command{
	Use:     "list <config>",
	Aliases: []string{"ls"},
	Short:   "List registered artifacts",
	Long:    "List every artifact recorded in the experiment's registry file.",
	Args:    cobra.ExactArgs(1),
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringVar(&listFramework, "framework", "", "Only show artifacts for this framework")
}

func runList(_ *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	reg, err := registry.Load(cfg.ModelRegistry)
	if err != nil {
		return err
	}

	var entries []registry.Entry
	if listFramework != "" {
		entries = reg.Filter(listFramework)
	} else {
		entries = reg.Entries()
	}

	if len(entries) == 0 {
		fmt.Println("No artifacts registered. Use 'mp run' to convert the configured models.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tFRAMEWORK\tPRECISION\tSTATUS\tREMOTE\tCONVERTED")
	for _, e := range entries {
		remote := e.RemoteURI
		if remote == "" {
			remote = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ModelName, e.Framework, e.Precision, e.Status, remote,
			e.ConvertedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
