package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/josephjilovec/quantumflow/internal/backend"
	"github.com/josephjilovec/quantumflow/internal/dispatch"
	"github.com/josephjilovec/quantumflow/internal/telemetry"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Dispatch a scheduled workflow",
	Long: `Execute the persisted schedule for a workflow, routing each task to the
executor registered for its backend.

Tasks run in priority order. A task failure is recorded and dispatch
continues with the remaining tasks; re-running later skips tasks that
already finished.`,
	RunE: runRun,
}

var (
	runWorkflowID int64
	runWorkers    int
)

func init() {
	runCmd.Flags().Int64Var(&runWorkflowID, "workflow", 0, "workflow ID (required)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "concurrent task limit (default from config)")
	runCmd.MarkFlagRequired("workflow")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	workers := runWorkers
	if workers == 0 {
		workers = sess.cfg.Dispatch.Workers
	}

	d := dispatch.New(sess.store, sess.workflows, backend.DefaultRegistry(), dispatch.Options{
		Recorder: telemetry.NewPrometheus(prometheus.DefaultRegisterer),
		Workers:  workers,
		Logger:   sess.logger,
	})

	report, err := d.Run(cmd.Context(), runWorkflowID)
	if err != nil {
		return err
	}

	printReport(report)
	return nil
}

func printReport(report *dispatch.Report) {
	fmt.Printf("Run %s for workflow %d\n\n", report.RunID, report.WorkflowID)

	taskIDs := make([]int, 0, len(report.Outcomes))
	for id := range report.Outcomes {
		taskIDs = append(taskIDs, id)
	}
	sort.Ints(taskIDs)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TASK\tBACKEND\tSTATUS\tDETAIL")
	for _, id := range taskIDs {
		out := report.Outcomes[id]
		detail := ""
		switch {
		case out.Prior:
			detail = "(previous run)"
		case out.Failure != nil:
			detail = fmt.Sprintf("[%s] %s", out.Failure.Code, out.Failure.Message)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", out.TaskID, out.Backend, out.Status, detail)
	}
	w.Flush()

	completed, failed := report.Counts()
	fmt.Println()
	if failed > 0 {
		color.New(color.FgYellow, color.Bold).Fprintf(os.Stderr,
			"%d of %d tasks failed\n", failed, completed+failed)
	} else {
		color.New(color.FgGreen).Printf("All %d tasks completed\n", completed)
	}
}
