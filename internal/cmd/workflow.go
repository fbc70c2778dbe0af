package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/josephjilovec/quantumflow/internal/task"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Manage workflow definitions",
}

var workflowCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a workflow from a task file",
	Long: `Create a workflow definition from a JSON or YAML task file.

The task file holds a list of tasks; each task has a type ("classical" or
"quantum") and a config object:

  - type: quantum
    config:
      circuit: bell_state
      backend: cirq
      shots: 1000
  - type: classical
    config:
      operation: preprocess
      data: [1.0, 2.0, 3.0]

Task IDs are assigned by position, and each task implicitly depends on the
one before it.`,
	RunE: runWorkflowCreate,
}

var workflowListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workflow definitions",
	RunE:  runWorkflowList,
}

var (
	workflowCreateName  string
	workflowCreateTasks string
)

func init() {
	workflowCreateCmd.Flags().StringVar(&workflowCreateName, "name", "", "workflow name (required)")
	workflowCreateCmd.Flags().StringVar(&workflowCreateTasks, "tasks-file", "", "JSON or YAML task list (required)")
	workflowCreateCmd.MarkFlagRequired("name")
	workflowCreateCmd.MarkFlagRequired("tasks-file")

	workflowCmd.AddCommand(workflowCreateCmd)
	workflowCmd.AddCommand(workflowListCmd)
	rootCmd.AddCommand(workflowCmd)
}

func runWorkflowCreate(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	tasks, err := task.LoadFile(workflowCreateTasks)
	if err != nil {
		return err
	}

	id, err := sess.workflows.Create(workflowCreateName, tasks)
	if err != nil {
		return err
	}

	fmt.Printf("Created workflow %d (%s) with %d tasks\n", id, workflowCreateName, len(tasks))
	return nil
}

func runWorkflowList(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	defs, err := sess.workflows.List()
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		fmt.Println("No workflows defined")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTASKS\tSTATUS\tCREATED")
	for _, def := range defs {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			def.ID, def.Name, len(def.Tasks), def.Status,
			def.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
