package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xvierd/wellflow/internal/adapters/tui"
	"github.com/xvierd/wellflow/internal/domain"
	"github.com/xvierd/wellflow/internal/ports"
	"github.com/xvierd/wellflow/internal/preset"
	"github.com/xvierd/wellflow/internal/services"
)

var (
	focusName        string
	focusDuration    int
	focusBreak       string
	focusCycles      string
	focusPreset      string
	focusPick        bool
	focusListPresets bool
)

// focusCmd represents the focus command
var focusCmd = &cobra.Command{
	Use:   "focus [task]",
	Short: "Run a focus session",
	Long: `Run a focus session in the terminal. With a task (id or fuzzy title) the
session uses the task's focus cycles and credits it; without one it is an
ad-hoc session using the configured defaults. A focus task only takes
--cycles; --duration and --break are rejected for it.

Quitting with q keeps the session's position; running the same session
again resumes it. Ending with e credits the focus minutes spent so far.`,
	Example: `  wellflow focus
  wellflow focus thesis
  wellflow focus --duration 45 --break none
  wellflow focus --cycles 50/10,50/10 --name "Deep work"
  wellflow focus --preset sprint
  wellflow focus --pick`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if focusListPresets {
			printPresets(cmd.OutOrStdout())
			return nil
		}

		ctx, stop := setupSignalHandler(cmd.Context())
		defer stop()

		req, err := focusRequest(cmd, args)
		if err != nil {
			return err
		}

		if focusPick {
			tasks, err := app.tasks.OccurrencesForDate(ctx, app.tasks.Today())
			if err != nil {
				return err
			}
			var pending []domain.Task
			for _, t := range tasks {
				if !t.Done {
					pending = append(pending, t)
				}
			}
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing left to do today.")
				return nil
			}
			picked := tui.RunTaskPicker("Focus on:", pending, &app.config.Theme)
			if picked.Aborted {
				return nil
			}
			req.Task = picked.Task.ID
		}

		session, err := app.sessions.Begin(ctx, req)
		if err != nil {
			return err
		}
		defer session.Close()
		app.state.SetLiveSession(session)

		if err := app.timer.Run(ctx, session); err != nil {
			return err
		}

		snap := session.Snapshot()
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), sessionJSON(snap))
		}
		printSessionOutcome(cmd.OutOrStdout(), snap)
		return nil
	},
}

func init() {
	focusCmd.Flags().StringVarP(&focusName, "name", "n", "", "Name of an ad-hoc session")
	focusCmd.Flags().IntVarP(&focusDuration, "duration", "d", 0, "Focus minutes (default from config)")
	focusCmd.Flags().StringVarP(&focusBreak, "break", "b", "", "Break type: none, pomodoro, custom")
	focusCmd.Flags().StringVar(&focusCycles, "cycles", "", "Custom cycles as focus/break minutes, e.g. 50/10,25/5")
	focusCmd.Flags().StringVarP(&focusPreset, "preset", "p", "", "Named session shape (see --list-presets)")
	focusCmd.Flags().BoolVar(&focusPick, "pick", false, "Pick one of today's tasks interactively")
	focusCmd.Flags().BoolVar(&focusListPresets, "list-presets", false, "List the session presets")
}

// focusRequest turns arguments and flags into a session request.
func focusRequest(cmd *cobra.Command, args []string) (services.StartSessionRequest, error) {
	workingDir, _ := os.Getwd()
	req := services.StartSessionRequest{
		Task:       strings.Join(args, " "),
		Name:       focusName,
		Duration:   focusDuration,
		WorkingDir: workingDir,
		Events:     []ports.SessionEvents{app.notifier},
	}

	if focusPreset != "" {
		p, err := preset.Lookup(focusPreset)
		if err != nil {
			return req, err
		}
		req.BreakType = p.BreakType
		req.Cycles = p.Cycles
		if req.Duration == 0 {
			req.Duration = p.Duration
		}
		if req.Name == "" {
			req.Name = strings.ToUpper(p.Name[:1]) + p.Name[1:]
		}
	}

	if cmd.Flags().Changed("break") {
		bt, err := domain.ValidateBreakType(focusBreak)
		if err != nil {
			return req, err
		}
		req.BreakType = bt
	}

	if focusCycles != "" {
		cycles, err := domain.ParseCycles(focusCycles)
		if err != nil {
			return req, err
		}
		req.Cycles = cycles
	}

	if req.Duration < 0 {
		return req, fmt.Errorf("%w: %d minutes", domain.ErrInvalidDuration, req.Duration)
	}
	return req, nil
}

func printPresets(w io.Writer) {
	for _, p := range preset.All() {
		fmt.Fprintf(w, "  %-10s %-6s %s\n", p.Name, formatMinutes(p.FocusMinutes()), dimText(p.Description))
	}
}

// sessionJSON is the machine-readable outcome of a session run.
func sessionJSON(snap domain.SessionSnapshot) map[string]any {
	out := map[string]any{
		"key":                   snap.Key,
		"name":                  snap.Name,
		"status":                string(snap.Status),
		"phase":                 string(snap.Phase.Type),
		"phase_index":           snap.PhaseIndex,
		"phase_count":           snap.PhaseCount,
		"remaining_time":        snap.TimeRemaining.String(),
		"focus_minutes_accrued": snap.TotalFocusMinutesAccrued,
		"focus_minutes_planned": snap.FocusMinutesPlanned,
	}
	if snap.TaskID != nil {
		out["task_id"] = *snap.TaskID
	}
	if snap.Result != nil {
		out["result"] = snap.Result
	}
	return out
}

// printSessionOutcome reports how a session run ended.
func printSessionOutcome(w io.Writer, snap domain.SessionSnapshot) {
	switch {
	case snap.Result != nil && snap.Result.Completed:
		fmt.Fprintf(w, "%s %s: %s of focus (+%d XP)\n", doneText("Session complete"), snap.Name,
			formatMinutes(snap.Result.DurationMinutes), snap.Result.DurationMinutes)
	case snap.Result != nil:
		fmt.Fprintf(w, "Session ended early: %s of focus on %s saved (+%d XP)\n",
			formatMinutes(snap.Result.DurationMinutes), snap.Name, snap.Result.DurationMinutes)
	case snap.Status == domain.SessionStatusAbandoned:
		fmt.Fprintf(w, "Session ended with no focus time on %s\n", snap.Name)
	default:
		fmt.Fprintf(w, "%s %s at %s of %s %d/%d. Run the same session again to resume.\n",
			warningText("Paused"), snap.Name, formatClock(snap.TimeRemaining),
			strings.ToLower(domain.GetPhaseLabel(snap.Phase)), snap.PhaseIndex+1, snap.PhaseCount)
	}
}
