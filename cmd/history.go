package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/xvierd/wellflow/internal/adapters/git"
	"github.com/xvierd/wellflow/internal/domain"
)

var (
	historyDays  int
	historyLimit int
	historyTask  string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded focus sessions",
	Long: `Show focus sessions recorded in the last days, newest first. With --task
only the sessions of that task are shown, over its whole lifetime.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			records []*domain.SessionRecord
			err     error
		)
		if historyTask != "" {
			task, terr := resolveTask(ctx, historyTask)
			if terr != nil {
				return terr
			}
			records, err = app.sessions.HistoryForTask(ctx, task.ID)
		} else {
			since := app.clock.Now().Add(-time.Duration(historyDays) * 24 * time.Hour)
			records, err = app.sessions.History(ctx, since, historyLimit)
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), newRecordJSONs(records))
		}
		printHistory(cmd.OutOrStdout(), records)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyDays, "days", 7, "How many days back to look")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of sessions (0 for all)")
	historyCmd.Flags().StringVar(&historyTask, "task", "", "Only sessions of this task (id or title)")
}

// recordJSON is the machine-readable form of a session record.
type recordJSON struct {
	ID              string `json:"id"`
	TaskID          string `json:"task_id,omitempty"`
	Name            string `json:"name"`
	Mode            string `json:"mode"`
	BreakType       string `json:"break_type"`
	DurationMinutes int    `json:"duration_minutes"`
	Completed       bool   `json:"completed"`
	StartedAt       string `json:"started_at"`
	EndedAt         string `json:"ended_at"`
	GitBranch       string `json:"git_branch,omitempty"`
	GitCommit       string `json:"git_commit,omitempty"`
}

func newRecordJSONs(records []*domain.SessionRecord) []recordJSON {
	out := make([]recordJSON, 0, len(records))
	for _, r := range records {
		v := recordJSON{
			ID:              r.ID,
			Name:            r.Name,
			Mode:            r.Mode,
			BreakType:       string(r.BreakType),
			DurationMinutes: r.DurationMinutes,
			Completed:       r.Completed,
			StartedAt:       r.StartedAt.Format(time.RFC3339),
			EndedAt:         r.EndedAt.Format(time.RFC3339),
			GitBranch:       r.GitBranch,
			GitCommit:       r.GitCommit,
		}
		if r.TaskID != nil {
			v.TaskID = *r.TaskID
		}
		out = append(out, v)
	}
	return out
}

func printHistory(w io.Writer, records []*domain.SessionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No sessions recorded yet.")
		return
	}

	total := 0
	for _, r := range records {
		total += r.DurationMinutes

		outcome := doneText("done")
		if !r.Completed {
			outcome = warningText("ended early")
		}
		line := fmt.Sprintf("%s  %-24s %6s  %s", dimText(r.StartedAt.Local().Format("2006-01-02 15:04")),
			r.Name, formatMinutes(r.DurationMinutes), outcome)
		if r.GitBranch != "" {
			line += dimText(fmt.Sprintf("  %s@%s", r.GitBranch, git.ShortCommit(r.GitCommit)))
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\n%d sessions, %s of focus\n", len(records), formatMinutes(total))
}
