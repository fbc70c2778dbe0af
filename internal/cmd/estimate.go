package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/josephjilovec/quantumflow/internal/cost"
	"github.com/josephjilovec/quantumflow/internal/errors"
	"github.com/josephjilovec/quantumflow/internal/task"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate workflow cost without scheduling",
	Long: `Estimate the total cost of a workflow from the pricing catalog.

The workflow is given either by ID (--workflow) or directly as a task file
(--tasks-file) without creating a workflow. Nothing is persisted.`,
	RunE: runEstimate,
}

var (
	estimateWorkflowID int64
	estimateTasksFile  string
	estimateJSON       bool
)

func init() {
	estimateCmd.Flags().Int64Var(&estimateWorkflowID, "workflow", 0, "workflow ID")
	estimateCmd.Flags().StringVar(&estimateTasksFile, "tasks-file", "", "estimate a task file directly")
	estimateCmd.Flags().BoolVar(&estimateJSON, "json", false, "output the estimate as JSON")
	estimateCmd.MarkFlagsMutuallyExclusive("workflow", "tasks-file")

	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	var tasks []task.Task
	switch {
	case estimateTasksFile != "":
		tasks, err = task.LoadFile(estimateTasksFile)
	case estimateWorkflowID > 0:
		tasks, err = sess.workflows.Tasks(estimateWorkflowID)
	default:
		return errors.New(errors.ErrCodeWorkflowInvalidTask,
			"either --workflow or --tasks-file is required")
	}
	if err != nil {
		return err
	}

	estimate, err := sess.costModel().EstimateWorkflow(tasks)
	if err != nil {
		return err
	}

	if estimateJSON {
		data, err := json.MarshalIndent(estimate, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printEstimate(estimate)
	return nil
}

func printEstimate(estimate *cost.WorkflowEstimate) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TASK\tBACKEND\tTIER\tCOST")
	for _, te := range estimate.Breakdown {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.4f\n", te.TaskID, te.Backend, te.Tier, te.Cost)
	}
	w.Flush()
	fmt.Printf("\nTotal estimated cost: %.4f\n", estimate.TotalCost)
}
