// Task commands: create, list, get, update, delete.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strata/internal/roster"
	"github.com/mesh-intelligence/strata/pkg/types"
)

var (
	taskListSearch string
	taskListSort   string
	taskListLimit  int
	taskListOffset int
	taskListAll    bool
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create key=value ...",
	Short: "Create a task",
	Long: `Create a task from key=value pairs.

Example:
  strata task create title="triage inbox" status=open team_id=<team-id>`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTaskCreate,
}

var taskListCmd = &cobra.Command{
	Use:   "list [key=value ...]",
	Short: "List tasks",
	Long: `List tasks matching the given key=value filters.

Example:
  strata task list status=open
  strata task list --search triage --sort created_at:desc`,
	RunE: runTaskList,
}

var taskGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskGet,
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <id> key=value ...",
	Short: "Update a task",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTaskUpdate,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Long:  `Delete removes the task row permanently.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

func init() {
	taskListCmd.Flags().StringVar(&taskListSearch, "search", "", "free-text search over titles")
	taskListCmd.Flags().StringVar(&taskListSort, "sort", "", "sort spec, e.g. created_at:desc")
	taskListCmd.Flags().IntVar(&taskListLimit, "limit", 20, "page size")
	taskListCmd.Flags().IntVar(&taskListOffset, "offset", 0, "page offset")
	taskListCmd.Flags().BoolVar(&taskListAll, "all", false, "return every match, unpaginated")

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskGetCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskDeleteCmd)
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	data, err := parseFields(args)
	if err != nil {
		return err
	}
	task, err := app.Tasks.Create(cmd.Context(), db, data)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	if jsonOutput {
		return printJSON(task)
	}
	fmt.Printf("Created task %s (%s)\n", task.Title, shortID(task.ID))
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	filters, err := parseFields(args)
	if err != nil {
		return err
	}
	q, err := buildQuery(filters, taskListSearch, taskListSort)
	if err != nil {
		return err
	}

	var tasks []*roster.Task
	total := 0
	if taskListAll {
		tasks, err = app.Tasks.Filter(cmd.Context(), db, q)
		total = len(tasks)
	} else {
		page := types.Pagination{Limit: taskListLimit, Offset: taskListOffset}
		tasks, total, err = app.Tasks.FilterPage(cmd.Context(), db, q, page)
	}
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	if jsonOutput {
		return printJSON(map[string]any{"items": tasks, "total": total})
	}
	printTaskTable(tasks, total)
	return nil
}

func runTaskGet(cmd *cobra.Command, args []string) error {
	task, err := requireTask(cmd, args[0])
	if err != nil {
		return err
	}
	return printJSON(task)
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	task, err := requireTask(cmd, args[0])
	if err != nil {
		return err
	}
	data, err := parseFields(args[1:])
	if err != nil {
		return err
	}
	if err := app.Tasks.Update(cmd.Context(), db, task, data); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if jsonOutput {
		return printJSON(task)
	}
	fmt.Printf("Updated task %s\n", shortID(task.ID))
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	task, err := requireTask(cmd, args[0])
	if err != nil {
		return err
	}
	if err := app.Tasks.Delete(cmd.Context(), db, task); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	fmt.Printf("Deleted task %s\n", shortID(task.ID))
	return nil
}

func requireTask(cmd *cobra.Command, id string) (*roster.Task, error) {
	task, err := app.Tasks.GetByID(cmd.Context(), db, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("no task with id %q", id)
	}
	return task, nil
}

func printTaskTable(tasks []*roster.Task, total int) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tTEAM\tCREATED")
	for _, t := range tasks {
		created := ""
		if !t.CreatedAt.IsZero() {
			created = t.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(t.ID), truncate(t.Title, 40), t.Status, shortID(t.TeamID), created)
	}
	w.Flush()
	fmt.Print(sb.String())
	fmt.Printf("Total: %d task(s)\n", total)
}
