package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/wellflow/internal/domain"
)

var (
	agendaFrom string
	agendaDays int
)

// todayCmd represents the today command
var todayCmd = &cobra.Command{
	Use:     "today [date]",
	Aliases: []string{"list", "ls"},
	Short:   "List the occurrences of a day",
	Long:    `List the tasks occurring on a day (default: today): time-blocked tasks by start time, then the rest in list order.`,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day := app.tasks.Today()
		if len(args) == 1 {
			var err error
			if day, err = parseDay(args[0], day); err != nil {
				return err
			}
		}
		return runDay(cmd, day)
	},
}

// agendaCmd represents the agenda command
var agendaCmd = &cobra.Command{
	Use:   "agenda",
	Short: "List occurrences over several days",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		from, err := parseDay(agendaFrom, app.tasks.Today())
		if err != nil {
			return err
		}
		if agendaDays < 1 {
			return fmt.Errorf("--days must be at least 1")
		}
		to := from.AddDays(agendaDays - 1)

		days, err := app.tasks.OccurrencesInRange(ctx, from, to)
		if err != nil {
			return fmt.Errorf("failed to list occurrences: %w", err)
		}

		if jsonOutput {
			var out []map[string]any
			for d := from; !d.After(to); d = d.AddDays(1) {
				out = append(out, map[string]any{
					"date":        d.String(),
					"occurrences": newTaskJSONs(days[d]),
				})
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"days": out})
		}

		w := cmd.OutOrStdout()
		for d := from; !d.After(to); d = d.AddDays(1) {
			tasks := days[d]
			if len(tasks) == 0 {
				continue
			}
			fmt.Fprintf(w, "%s %s\n", boldText(d.String()), dimText(d.Weekday().String()))
			for _, t := range tasks {
				fmt.Fprintf(w, "  %s\n", formatTaskLine(t))
			}
			fmt.Fprintln(w)
		}
		return nil
	},
}

func init() {
	agendaCmd.Flags().StringVar(&agendaFrom, "from", "today", "First day")
	agendaCmd.Flags().IntVar(&agendaDays, "days", 7, "Number of days")
}

// runDay prints the occurrences of day with today's progress.
func runDay(cmd *cobra.Command, day domain.Date) error {
	ctx := cmd.Context()

	tasks, err := app.tasks.OccurrencesForDate(ctx, day)
	if err != nil {
		return fmt.Errorf("failed to list occurrences: %w", err)
	}
	progress, err := app.ledger.Progress(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"date":        day.String(),
			"occurrences": newTaskJSONs(tasks),
			"progress":    progress,
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %s\n\n", boldText(day.String()), dimText(day.Weekday().String()))
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks. Add one with \"wellflow add\".")
	}
	for _, t := range tasks {
		fmt.Fprintf(w, "  %s\n", formatTaskLine(t))
	}
	fmt.Fprintf(w, "\n%s %d/%d XP  %s\n", progressBar(progress.Percent, 20), progress.DailyXP, progress.DailyGoal,
		dimText(fmt.Sprintf("streak %d days", progress.StreakDays)))
	return nil
}
