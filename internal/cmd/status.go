package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/josephjilovec/quantumflow/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted schedule for a workflow",
	RunE:  runStatus,
}

var (
	statusWorkflowID int64
	statusJSON       bool
)

func init() {
	statusCmd.Flags().Int64Var(&statusWorkflowID, "workflow", 0, "workflow ID (required)")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output the schedule as JSON")
	statusCmd.MarkFlagRequired("workflow")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	sched, err := sess.store.Get(statusWorkflowID)
	if err != nil {
		return err
	}

	if statusJSON {
		data, err := json.MarshalIndent(sched, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Schedule for workflow %d (updated %s)\n\n",
		sched.WorkflowID, sched.UpdatedAt.Format("2006-01-02 15:04:05"))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRIORITY\tTASK\tBACKEND\tSTATUS")
	for _, rec := range sched.Records {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n",
			rec.Priority, rec.TaskID, rec.Backend, statusColor(rec.Status))
	}
	return w.Flush()
}

func statusColor(s store.Status) string {
	switch s {
	case store.StatusCompleted:
		return color.GreenString(string(s))
	case store.StatusFailed:
		return color.RedString(string(s))
	default:
		return string(s)
	}
}
