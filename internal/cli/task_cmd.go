package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trackit/internal/cli/formatter"
	"trackit/internal/service"
)

func newTasksCmd(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the tasks of a day, creating today's recurring ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := app.dateFlag(date)
			if err != nil {
				return err
			}
			tasks, err := app.Tasks.EnsureAndListTasks(cmd.Context(), day)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDay(day, tasks, app.Tasks.ComputeProgress(tasks)))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to show (YYYY-MM-DD), defaults to today")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var (
		date      string
		points    float64
		recurring bool
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a task, or a daily recurring task with --recurring",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := app.dateFlag(date)
			if err != nil {
				return err
			}
			task, err := app.Tasks.CreateTask(cmd.Context(), service.TaskInput{
				Name:      strings.Join(args, " "),
				Points:    points,
				Date:      day,
				Recurring: recurring,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", formatter.FormatTask(task))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day of the task, or first day of a recurring one (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&points, "points", 1, "Points earned on completion, in steps of 0.5")
	cmd.Flags().BoolVar(&recurring, "recurring", false, "Repeat the task every day from --date on")
	return cmd
}

func newDoneCmd(app *App, completed bool) *cobra.Command {
	use, short, verb := "done ID", "Mark a task completed", "Completed"
	if !completed {
		use, short, verb = "undo ID", "Mark a task not completed", "Reopened"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			inst, err := app.Tasks.SetCompleted(cmd.Context(), id, completed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, formatter.FormatTask(inst))
			return nil
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	var (
		name   string
		points float64
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the name and points of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := app.Tasks.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			base := task.Base()
			if cmd.Flags().Changed("name") {
				base.Name = name
			}
			if cmd.Flags().Changed("points") {
				base.Points = points
			}
			if err := app.Tasks.UpdateDetails(cmd.Context(), id, base.Name, base.Points); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated #%d %s (%s pts)\n", id, strings.TrimSpace(base.Name), service.FormatPoints(base.Points))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New task name")
	cmd.Flags().Float64Var(&points, "points", 0, "New point value")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task; instances of recurring tasks are hidden for their day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mode, err := app.Tasks.DeleteTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			if mode == service.DeleteSoft {
				fmt.Fprintf(cmd.OutOrStdout(), "Hid task #%d for its day\n", id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d\n", id)
			return nil
		},
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return uint(id), nil
}
