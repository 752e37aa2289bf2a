package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/xvierd/wellflow/internal/adapters/calendar"
	"github.com/xvierd/wellflow/internal/adapters/git"
	"github.com/xvierd/wellflow/internal/domain"
)

var (
	exportFormat string
	exportFrom   string
	exportDays   int
	exportOut    string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks as iCalendar or session history as CSV/markdown",
	Long: `Export the task occurrences of a date range as an iCalendar feed (ics),
or the focus sessions of that range as CSV or markdown.`,
	Example: `  wellflow export > week.ics
  wellflow export --from 2026-11-01 --days 30 --out november.ics
  wellflow export --format csv --from -30 --days 31`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseDay(exportFrom, app.tasks.Today())
		if err != nil {
			return err
		}
		if exportDays < 1 {
			return fmt.Errorf("--days must be at least 1")
		}
		to := from.AddDays(exportDays - 1)

		w := cmd.OutOrStdout()
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", exportOut, err)
			}
			defer f.Close()
			w = f
		}

		switch exportFormat {
		case "ics":
			err = exportICS(cmd.Context(), w, from, to)
		case "csv", "md":
			err = exportSessions(cmd.Context(), w, from, to)
		default:
			return fmt.Errorf("unknown format %q: use ics, csv or md", exportFormat)
		}
		if err != nil {
			return err
		}

		if exportOut != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", exportFormat, exportOut)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "ics", "Output format: ics, csv or md")
	exportCmd.Flags().StringVar(&exportFrom, "from", "today", "First day")
	exportCmd.Flags().IntVar(&exportDays, "days", 30, "Number of days")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to a file instead of stdout")
}

func exportICS(ctx context.Context, w io.Writer, from, to domain.Date) error {
	days, err := app.tasks.OccurrencesInRange(ctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to list occurrences: %w", err)
	}
	_, err = io.WriteString(w, calendar.BuildICS(days, app.clock.Now()))
	return err
}

func exportSessions(ctx context.Context, w io.Writer, from, to domain.Date) error {
	loc := app.clock.Now().Location()
	since := from.In(loc)
	until := to.AddDays(1).In(loc)

	all, err := app.sessions.History(ctx, since, 0)
	if err != nil {
		return err
	}
	var records []*domain.SessionRecord
	for _, r := range all {
		if r.StartedAt.Before(until) {
			records = append(records, r)
		}
	}

	if exportFormat == "csv" {
		return exportCSV(w, records)
	}
	return exportMarkdown(w, records, from, to)
}

func exportMarkdown(w io.Writer, records []*domain.SessionRecord, from, to domain.Date) error {
	fmt.Fprintf(w, "# wellflow sessions %s to %s\n\n", from, to)
	fmt.Fprintf(w, "Generated: %s\n\n", app.clock.Now().Format("2006-01-02 15:04"))

	total := 0
	for _, r := range records {
		total += r.DurationMinutes
		outcome := "completed"
		if !r.Completed {
			outcome = "ended early"
		}
		fmt.Fprintf(w, "## %s %s\n", r.StartedAt.Local().Format("2006-01-02 15:04"), r.Name)
		fmt.Fprintf(w, "- Focus: %s (%s)\n", formatMinutes(r.DurationMinutes), outcome)
		fmt.Fprintf(w, "- Breaks: %s\n", r.BreakType)
		if r.GitBranch != "" {
			fmt.Fprintf(w, "- Git: %s@%s\n", r.GitBranch, git.ShortCommit(r.GitCommit))
		}
		fmt.Fprintln(w)
	}
	_, err := fmt.Fprintf(w, "Total: %d sessions, %s of focus\n", len(records), formatMinutes(total))
	return err
}

func exportCSV(w io.Writer, records []*domain.SessionRecord) error {
	cw := csv.NewWriter(w)

	_ = cw.Write([]string{
		"date", "started_at", "ended_at", "name", "task_id", "mode", "break_type",
		"duration_min", "completed", "git_branch", "git_commit",
	})
	for _, r := range records {
		taskID := ""
		if r.TaskID != nil {
			taskID = *r.TaskID
		}
		_ = cw.Write([]string{
			r.StartedAt.Local().Format("2006-01-02"),
			r.StartedAt.Format(time.RFC3339),
			r.EndedAt.Format(time.RFC3339),
			r.Name,
			taskID,
			r.Mode,
			string(r.BreakType),
			strconv.Itoa(r.DurationMinutes),
			strconv.FormatBool(r.Completed),
			r.GitBranch,
			r.GitCommit,
		})
	}

	cw.Flush()
	return cw.Error()
}
