package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xvierd/wellflow/internal/domain"
)

// taskFlags holds the flags shared by add and edit.
type taskFlags struct {
	title       string
	category    string
	date        string
	start       string
	end         string
	repeat      string
	until       string
	focus       int
	breakLength int
	cycles      int
	unschedule  bool
}

func (f *taskFlags) register(fs *pflag.FlagSet, withTitle bool) {
	if withTitle {
		fs.StringVar(&f.title, "title", "", "New title")
		fs.BoolVar(&f.unschedule, "unschedule", false, "Remove the start and end time")
	}
	fs.StringVarP(&f.category, "category", "c", "", "Category: study, work, reading, selfcare, routine, personalwork")
	fs.StringVarP(&f.date, "date", "d", "", "Day: YYYY-MM-DD, today, tomorrow or +N (default: today)")
	fs.StringVar(&f.start, "start", "", "Start time HH:MM (requires --end)")
	fs.StringVar(&f.end, "end", "", "End time HH:MM (requires --start)")
	fs.StringVarP(&f.repeat, "repeat", "r", "", "Repeat: none, daily, weekly")
	fs.StringVar(&f.until, "until", "", "Last day of the series (YYYY-MM-DD)")
	fs.IntVar(&f.focus, "focus", 0, "Focus block length in minutes (turns on focus mode; 0 turns it off on edit)")
	fs.IntVar(&f.breakLength, "break", 0, "Break length in minutes between focus blocks")
	fs.IntVar(&f.cycles, "cycles", 1, "Number of focus blocks")
}

// apply overwrites the fields of in whose flags were given.
func (f *taskFlags) apply(fs *pflag.FlagSet, in *domain.TaskInput, today domain.Date) error {
	if fs.Changed("title") {
		in.Title = f.title
	}
	if fs.Changed("category") {
		c, err := domain.ValidateCategory(f.category)
		if err != nil {
			return err
		}
		in.Category = c
	}
	if fs.Changed("date") {
		d, err := parseDay(f.date, today)
		if err != nil {
			return err
		}
		in.Date = d
	}
	if in.Date.IsZero() {
		in.Date = today
	}

	if f.unschedule {
		in.StartAt, in.EndAt = nil, nil
	}
	if fs.Changed("start") || fs.Changed("end") {
		start, end := f.start, f.end
		if !fs.Changed("start") && in.StartAt != nil {
			start = in.StartAt.Local().Format("15:04")
		}
		if !fs.Changed("end") && in.EndAt != nil {
			end = in.EndAt.Local().Format("15:04")
		}
		if start == "" || end == "" {
			return fmt.Errorf("%w: --start and --end go together", domain.ErrInvalidSchedule)
		}
		startAt, err := in.Date.At(start, time.Local)
		if err != nil {
			return err
		}
		endAt, err := in.Date.At(end, time.Local)
		if err != nil {
			return err
		}
		in.StartAt, in.EndAt = &startAt, &endAt
	} else if fs.Changed("date") && in.StartAt != nil {
		startAt, _ := in.Date.At(in.StartAt.Local().Format("15:04"), time.Local)
		endAt, _ := in.Date.At(in.EndAt.Local().Format("15:04"), time.Local)
		in.StartAt, in.EndAt = &startAt, &endAt
	}

	if fs.Changed("repeat") {
		r, err := domain.ValidateRepeat(f.repeat)
		if err != nil {
			return err
		}
		in.Repeat = r
	}
	if fs.Changed("until") {
		if f.until == "" {
			in.RepeatUntil = nil
		} else {
			until, err := parseDay(f.until, today)
			if err != nil {
				return err
			}
			in.RepeatUntil = &until
		}
	}

	if fs.Changed("focus") {
		in.FocusMode = f.focus > 0
		in.FocusDuration = f.focus
		if !in.FocusMode {
			in.BreakDuration, in.Cycles = 0, 1
		}
	}
	if fs.Changed("break") {
		in.BreakDuration = f.breakLength
	}
	if fs.Changed("cycles") {
		in.Cycles = f.cycles
	}
	return nil
}

var (
	addFlags  taskFlags
	editFlags taskFlags

	deleteSeries bool
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a one-off or recurring task. Tasks with --start/--end are
time-blocked; --focus turns a task into a focus task with its own cycles.`,
	Example: `  wellflow add Stretch -c selfcare --repeat daily
  wellflow add Thesis -c study --start 14:00 --end 16:00 --focus 50 --break 10 --cycles 2
  wellflow add "Weekly review" -d tomorrow -r weekly --until 2026-12-31`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		in := domain.TaskInput{Title: strings.Join(args, " ")}
		if err := addFlags.apply(cmd.Flags(), &in, app.tasks.Today()); err != nil {
			return err
		}

		task, err := app.tasks.AddTask(ctx, in)
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), newTaskJSON(*task))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task added: %s on %s %s\n", boldText(task.Title), task.Date, dimText("(ID: "+shortID(task.ID)+")"))
		return nil
	},
}

// editCmd represents the edit command
var editCmd = &cobra.Command{
	Use:   "edit <task>",
	Short: "Edit a task (the whole series for recurring tasks)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		task, err := resolveTask(ctx, args[0])
		if err != nil {
			return err
		}

		in := task.Input()
		if err := editFlags.apply(cmd.Flags(), &in, app.tasks.Today()); err != nil {
			return err
		}

		updated, err := app.tasks.EditTask(ctx, task.ID, in)
		if err != nil {
			return fmt.Errorf("failed to edit task: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), newTaskJSON(*updated))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task updated: %s\n", boldText(updated.Title))
		return nil
	},
}

// toggleCmd represents the toggle command
var toggleCmd = &cobra.Command{
	Use:     "toggle <task>",
	Aliases: []string{"done"},
	Short:   "Mark a task done or not done",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		task, err := resolveTask(ctx, args[0])
		if err != nil {
			return err
		}

		updated, err := app.tasks.ToggleTask(ctx, task.ID)
		if err != nil {
			return fmt.Errorf("failed to toggle task: %w", err)
		}
		progress, err := app.ledger.Progress(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"task":     newTaskJSON(*updated),
				"progress": progress,
			})
		}

		out := cmd.OutOrStdout()
		if updated.Done {
			fmt.Fprintf(out, "%s %s (+%d XP)\n", doneText("Done:"), updated.Title, updated.XPReward())
		} else {
			fmt.Fprintf(out, "Not done: %s\n", updated.Title)
		}
		fmt.Fprintf(out, "XP today: %d/%d  streak: %d days\n", progress.DailyXP, progress.DailyGoal, progress.StreakDays)
		return nil
	},
}

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <task> [date]",
	Short: "Delete one occurrence of a task, or the whole series",
	Long: `Delete the occurrence of a task on a day. Recurring tasks default to
today; one-off tasks default to their own date and are removed entirely.
--series removes every occurrence.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		task, err := resolveTask(ctx, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if deleteSeries {
			if err := app.tasks.DeleteSeries(ctx, task.ID); err != nil {
				return fmt.Errorf("failed to delete task: %w", err)
			}
			if jsonOutput {
				return printJSON(out, map[string]any{"deleted": task.ID, "series": true})
			}
			fmt.Fprintf(out, "Deleted %s and all its occurrences\n", task.Title)
			return nil
		}

		day := app.tasks.Today()
		if !task.IsRecurring() {
			day = task.Date
		}
		if len(args) == 2 {
			if day, err = parseDay(args[1], app.tasks.Today()); err != nil {
				return err
			}
		}
		if err := app.tasks.DeleteOccurrence(ctx, task.ID, day); err != nil {
			return fmt.Errorf("failed to delete occurrence: %w", err)
		}

		if jsonOutput {
			return printJSON(out, map[string]any{"deleted": task.ID, "date": day.String(), "series": false})
		}
		fmt.Fprintf(out, "Deleted %s on %s\n", task.Title, day)
		return nil
	},
}

// reorderCmd represents the reorder command
var reorderCmd = &cobra.Command{
	Use:   "reorder <task> <position>",
	Short: "Set the position of an unscheduled task in the day list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		order, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[1])
		}
		task, err := resolveTask(ctx, args[0])
		if err != nil {
			return err
		}

		updated, err := app.tasks.Reorder(ctx, task.ID, order)
		if err != nil {
			return fmt.Errorf("failed to reorder task: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), newTaskJSON(*updated))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s moved to position %d\n", updated.Title, updated.Order)
		return nil
	},
}

func init() {
	addFlags.register(addCmd.Flags(), false)
	editFlags.register(editCmd.Flags(), true)
	deleteCmd.Flags().BoolVar(&deleteSeries, "series", false, "Delete every occurrence of the task")
}

// resolveTask finds a task by id, unique id prefix or fuzzy title.
func resolveTask(ctx context.Context, ref string) (*domain.Task, error) {
	ref = strings.TrimSpace(ref)

	all, err := app.tasks.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	var byPrefix []domain.Task
	for _, t := range all {
		if t.ID == ref {
			return &t, nil
		}
		if len(ref) >= 4 && strings.HasPrefix(t.ID, ref) {
			byPrefix = append(byPrefix, t)
		}
	}
	if len(byPrefix) == 1 {
		return &byPrefix[0], nil
	}

	matches, err := app.tasks.FindByTitle(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrTaskNotFound, ref)
	}
	return &matches[0], nil
}
