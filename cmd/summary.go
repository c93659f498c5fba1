package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/cloudchase/model-pipeline/pipeline"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true)
	registeredStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	skippedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	failedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func stateStyle(state pipeline.TaskState) lipgloss.Style {
	switch state {
	case pipeline.StateRegistered:
		return registeredStyle
	case pipeline.StateSkipped:
		return skippedStyle
	default:
		return failedStyle
	}
}

// printSummary renders every task's terminal state and, for failures, the
// captured cause.
func printSummary(summary *pipeline.Summary) {
	if summary == nil {
		return
	}

	fmt.Println()
	fmt.Println(summaryTitleStyle.Render(
		fmt.Sprintf("Run %s (%s)", summary.RunID, summary.Experiment)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tFRAMEWORK\tPRECISION\tSTATE\tDETAIL")
	for _, r := range summary.Results {
		detail := "-"
		if r.Err != nil {
			detail = r.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.Task.Model.Name, r.Task.Framework, r.Task.Precision,
			stateStyle(r.State).Render(string(r.State)), detail)
	}
	w.Flush()

	counts := summary.Counts()
	fmt.Printf("\n%d registered, %d skipped, %d failed (of %d tasks)\n",
		counts[pipeline.StateRegistered],
		counts[pipeline.StateSkipped],
		len(summary.Failed()),
		len(summary.Results))
}
