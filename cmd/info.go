package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudchase/model-pipeline/config"
	"github.com/cloudchase/model-pipeline/registry"
)

var infoCmd = &cobra.Command{
	Use:   "info <config> <model> <framework> <precision>",
	Short: "Show one artifact's record",
	Long:  "Display the full registry record for a (model, framework, precision) combination.",
	Args:  cobra.ExactArgs(4),
	RunE:  runInfo,
}

func runInfo(_ *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	reg, err := registry.Load(cfg.ModelRegistry)
	if err != nil {
		return err
	}

	model, framework, precision := args[1], args[2], args[3]
	e := reg.Find(model, framework, precision)
	if e == nil {
		return fmt.Errorf("no artifact registered for (%s, %s, %s)", model, framework, precision)
	}

	fmt.Printf("Model:       %s\n", e.ModelName)
	fmt.Printf("Framework:   %s\n", e.Framework)
	fmt.Printf("Precision:   %s\n", e.Precision)
	if e.Task != "" {
		fmt.Printf("Task:        %s\n", e.Task)
	}
	if e.Revision != "" {
		fmt.Printf("Revision:    %s\n", e.Revision)
	}
	fmt.Printf("Status:      %s\n", e.Status)
	fmt.Printf("Local path:  %s\n", e.LocalPath)
	if e.RemoteURI != "" {
		fmt.Printf("Remote URI:  %s\n", e.RemoteURI)
	}
	fmt.Printf("Converted:   %s\n", e.ConvertedAt.Format("2006-01-02 15:04:05"))
	if e.ConversionCommand != "" {
		fmt.Printf("Command:     %s\n", e.ConversionCommand)
	}
	return nil
}
