package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/xvierd/wellflow/internal/domain"
)

// progressCmd represents the progress command
var progressCmd = &cobra.Command{
	Use:     "progress",
	Aliases: []string{"status"},
	Short:   "Show XP, the daily goal and the streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		state, err := app.state.GetCurrentState(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current state: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"date":     state.Date.String(),
				"progress": state.Progress,
				"today": map[string]any{
					"focus_minutes":      state.TodayStats.FocusMinutes,
					"completed_sessions": state.TodayStats.CompletedSessions,
					"partial_sessions":   state.TodayStats.PartialSessions,
					"tasks_done":         state.TodayStats.TasksDone,
					"pending":            state.PendingCount(),
				},
			})
		}

		printProgress(cmd, state)
		return nil
	},
}

// goalCmd represents the goal command
var goalCmd = &cobra.Command{
	Use:   "goal [minutes]",
	Short: "Show or set the daily XP goal",
	Long: fmt.Sprintf(`Show or set the daily goal in focus-minute XP. Values are clamped to
%d..%d.`, domain.MinDailyGoal, domain.MaxDailyGoal),
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			progress *domain.DailyProgress
			err      error
		)
		if len(args) == 0 {
			progress, err = app.ledger.Progress(ctx)
		} else {
			minutes, convErr := strconv.Atoi(args[0])
			if convErr != nil {
				return fmt.Errorf("invalid goal %q: want minutes", args[0])
			}
			progress, err = app.ledger.SetDailyGoal(ctx, minutes)
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), progress)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Daily goal: %d XP (%s of focus)\n", progress.DailyGoal, formatMinutes(progress.DailyGoal))
		return nil
	},
}

func printProgress(cmd *cobra.Command, state *domain.CurrentState) {
	w := cmd.OutOrStdout()
	p := state.Progress

	fmt.Fprintf(w, "%s\n\n", boldText("Progress for "+state.Date.String()))
	fmt.Fprintf(w, "  Today   %s %d/%d XP", progressBar(p.Percent, 24), p.DailyXP, p.DailyGoal)
	if p.GoalMet {
		fmt.Fprintf(w, "  %s", doneText("goal met"))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Total   %d XP\n", p.XP)
	fmt.Fprintf(w, "  Streak  %d days\n\n", p.StreakDays)

	s := state.TodayStats
	fmt.Fprintf(w, "  Focus   %s in %d sessions", formatMinutes(s.FocusMinutes), s.CompletedSessions+s.PartialSessions)
	if s.PartialSessions > 0 {
		fmt.Fprintf(w, " %s", dimText(fmt.Sprintf("(%d ended early)", s.PartialSessions)))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Tasks   %d done, %d to go\n", s.TasksDone, state.PendingCount())
}
