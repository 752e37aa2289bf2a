// Package mcp provides the MCP (Model Context Protocol) server implementation.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xvierd/wellflow/internal/domain"
	"github.com/xvierd/wellflow/internal/ports"
)

const defaultHistoryLimit = 20

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server        *server.MCPServer
	stateProvider ports.MCPStateProvider
	now           func() time.Time
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewServer creates a new MCP server instance.
func NewServer(stateProvider ports.MCPStateProvider, version string) *Server {
	s := &Server{
		stateProvider: stateProvider,
		now:           time.Now,
	}

	s.server = server.NewMCPServer(
		"wellflow",
		version,
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	s.server.AddTool(
		mcp.NewTool(
			"get_progress",
			mcp.WithDescription("Get today's XP, daily goal, streak, focus stats and task occurrences"),
		),
		s.handleGetProgress,
	)

	s.server.AddTool(
		mcp.NewTool(
			"list_occurrences",
			mcp.WithDescription("List the tasks occurring on a day, in display order"),
			mcp.WithString(
				"date",
				mcp.Description("Day as YYYY-MM-DD (default: today)"),
			),
		),
		s.handleListOccurrences,
	)

	s.server.AddTool(
		mcp.NewTool(
			"add_task",
			mcp.WithDescription("Create a task, optionally time-blocked, recurring or with a focus plan"),
			mcp.WithString("title", mcp.Required(), mcp.Description("The title of the task")),
			mcp.WithString(
				"category",
				mcp.Description("Task category (default: routine)"),
				mcp.Enum("study", "work", "reading", "selfcare", "routine", "personalwork"),
			),
			mcp.WithString("date", mcp.Description("First day as YYYY-MM-DD (default: today)")),
			mcp.WithString("start", mcp.Description("Start time as HH:MM; requires end")),
			mcp.WithString("end", mcp.Description("End time as HH:MM; requires start")),
			mcp.WithString(
				"repeat",
				mcp.Description("Recurrence rule (default: none)"),
				mcp.Enum("none", "daily", "weekly"),
			),
			mcp.WithString("repeat_until", mcp.Description("Last day of the series as YYYY-MM-DD")),
			mcp.WithNumber("focus_duration", mcp.Description("Focus minutes per cycle; enables focus mode")),
			mcp.WithNumber("break_duration", mcp.Description("Break minutes per cycle")),
			mcp.WithNumber("cycles", mcp.Description("Number of focus/break cycles (default: 1)")),
		),
		s.handleAddTask,
	)

	s.server.AddTool(
		mcp.NewTool(
			"toggle_task",
			mcp.WithDescription("Flip a task's done flag. Marking it done awards XP"),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("The ID of the task")),
		),
		s.handleToggleTask,
	)

	s.server.AddTool(
		mcp.NewTool(
			"delete_occurrence",
			mcp.WithDescription("Delete one occurrence of a task. One-off tasks are removed entirely"),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("The ID of the task")),
			mcp.WithString("date", mcp.Description("Day of the occurrence as YYYY-MM-DD (default: today)")),
		),
		s.handleDeleteOccurrence,
	)

	s.server.AddTool(
		mcp.NewTool(
			"delete_series",
			mcp.WithDescription("Delete a task and every occurrence of it"),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("The ID of the task")),
		),
		s.handleDeleteSeries,
	)

	s.server.AddTool(
		mcp.NewTool(
			"get_history",
			mcp.WithDescription("Get recent focus sessions, including partial ones"),
			mcp.WithNumber("limit", mcp.Description("Maximum number of sessions (default: 20)")),
		),
		s.handleGetHistory,
	)

	s.server.AddTool(
		mcp.NewTool(
			"set_daily_goal",
			mcp.WithDescription("Set the daily XP goal in minutes (15 to 480)"),
			mcp.WithNumber("minutes", mcp.Required(), mcp.Description("Goal in focus-minute equivalents")),
		),
		s.handleSetDailyGoal,
	)
}

// Start begins serving MCP requests via stdio.
func (s *Server) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	return server.ServeStdio(s.server)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// IsRunning returns true if the server is active.
func (s *Server) IsRunning() bool {
	if s.ctx == nil {
		return false
	}
	return s.ctx.Err() == nil
}

// Ensure Server implements ports.MCPHandler.
var _ ports.MCPHandler = (*Server)(nil)

type taskView struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	Date          string   `json:"date"`
	Start         string   `json:"start,omitempty"`
	End           string   `json:"end,omitempty"`
	Done          bool     `json:"done"`
	Repeat        string   `json:"repeat"`
	RepeatUntil   string   `json:"repeat_until,omitempty"`
	FocusMode     bool     `json:"focus_mode"`
	FocusDuration int      `json:"focus_duration,omitempty"`
	BreakDuration int      `json:"break_duration,omitempty"`
	Cycles        int      `json:"cycles,omitempty"`
	Exceptions    []string `json:"exceptions,omitempty"`
}

func newTaskView(t domain.Task) taskView {
	v := taskView{
		ID:        t.ID,
		Title:     t.Title,
		Category:  string(t.Category),
		Date:      t.Date.String(),
		Done:      t.Done,
		Repeat:    string(t.Repeat),
		FocusMode: t.FocusMode,
	}
	if t.IsScheduled() {
		v.Start = t.StartAt.Format("15:04")
		v.End = t.EndAt.Format("15:04")
	}
	if t.RepeatUntil != nil {
		v.RepeatUntil = t.RepeatUntil.String()
	}
	if t.FocusMode {
		v.FocusDuration = t.FocusDuration
		v.BreakDuration = t.BreakDuration
		v.Cycles = t.Cycles
	}
	for _, d := range t.Exceptions {
		v.Exceptions = append(v.Exceptions, d.String())
	}
	return v
}

func newTaskViews(tasks []domain.Task) []taskView {
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, newTaskView(t))
	}
	return views
}

type progressView struct {
	XP         int     `json:"xp"`
	DailyXP    int     `json:"daily_xp"`
	DailyGoal  int     `json:"daily_goal"`
	StreakDays int     `json:"streak_days"`
	GoalMet    bool    `json:"goal_met"`
	Percent    float64 `json:"percent"`
}

func newProgressView(p domain.DailyProgress) progressView {
	return progressView{
		XP:         p.XP,
		DailyXP:    p.DailyXP,
		DailyGoal:  p.DailyGoal,
		StreakDays: p.StreakDays,
		GoalMet:    p.GoalMet,
		Percent:    p.Percent,
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) today() domain.Date {
	return domain.DateOf(s.now())
}

// dateArg reads an optional YYYY-MM-DD argument, defaulting to today.
func (s *Server) dateArg(request mcp.CallToolRequest, name string) (domain.Date, error) {
	raw := request.GetString(name, "")
	if raw == "" {
		return s.today(), nil
	}
	return domain.ParseDate(raw)
}

// handleGetProgress handles the get_progress tool.
func (s *Server) handleGetProgress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.stateProvider.GetCurrentState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current state: %w", err)
	}

	result := map[string]any{
		"date":     state.Date.String(),
		"progress": newProgressView(state.Progress),
		"today_stats": map[string]any{
			"focus_minutes":      state.TodayStats.FocusMinutes,
			"completed_sessions": state.TodayStats.CompletedSessions,
			"partial_sessions":   state.TodayStats.PartialSessions,
			"tasks_done":         state.TodayStats.TasksDone,
		},
		"pending":        state.PendingCount(),
		"occurrences":    newTaskViews(state.Occurrences),
		"active_session": nil,
	}

	if state.IsSessionActive() {
		snap := state.ActiveSession
		result["active_session"] = map[string]any{
			"name":           snap.Name,
			"status":         string(snap.Status),
			"phase":          domain.GetPhaseLabel(snap.Phase),
			"phase_index":    snap.PhaseIndex,
			"phase_count":    snap.PhaseCount,
			"remaining_time": snap.TimeRemaining.String(),
			"focus_minutes":  snap.TotalFocusMinutesAccrued,
		}
	}

	return jsonResult(result)
}

// handleListOccurrences handles the list_occurrences tool.
func (s *Server) handleListOccurrences(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := s.dateArg(request, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	occ, err := s.stateProvider.ListOccurrences(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list occurrences: %w", err)
	}

	return jsonResult(map[string]any{
		"date":        day.String(),
		"occurrences": newTaskViews(occ),
	})
}

// handleAddTask handles the add_task tool.
func (s *Server) handleAddTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title is required"), nil
	}

	in := domain.TaskInput{Title: title}

	if raw := request.GetString("category", ""); raw != "" {
		c, err := domain.ValidateCategory(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		in.Category = c
	}

	if in.Date, err = s.dateArg(request, "date"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	start, end := request.GetString("start", ""), request.GetString("end", "")
	if start != "" || end != "" {
		startAt, err := in.Date.At(start, time.Local)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		endAt, err := in.Date.At(end, time.Local)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		in.StartAt, in.EndAt = &startAt, &endAt
	}

	repeat, err := domain.ValidateRepeat(request.GetString("repeat", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in.Repeat = repeat

	if raw := request.GetString("repeat_until", ""); raw != "" {
		until, err := domain.ParseDate(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		in.RepeatUntil = &until
	}

	if focus := int(request.GetFloat("focus_duration", 0)); focus > 0 {
		in.FocusMode = true
		in.FocusDuration = focus
		in.BreakDuration = int(request.GetFloat("break_duration", 0))
		in.Cycles = int(request.GetFloat("cycles", 1))
	}

	task, err := s.stateProvider.AddTask(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add task: %v", err)), nil
	}

	return jsonResult(newTaskView(*task))
}

// handleToggleTask handles the toggle_task tool.
func (s *Server) handleToggleTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("task_id is required"), nil
	}

	task, err := s.stateProvider.ToggleTask(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to toggle task: %v", err)), nil
	}

	return jsonResult(newTaskView(*task))
}

// handleDeleteOccurrence handles the delete_occurrence tool.
func (s *Server) handleDeleteOccurrence(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("task_id is required"), nil
	}
	day, err := s.dateArg(request, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.stateProvider.DeleteOccurrence(ctx, taskID, day); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete occurrence: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted occurrence of %s on %s", taskID, day)), nil
}

// handleDeleteSeries handles the delete_series tool.
func (s *Server) handleDeleteSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("task_id is required"), nil
	}

	if err := s.stateProvider.DeleteSeries(ctx, taskID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete series: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted task %s", taskID)), nil
}

// handleGetHistory handles the get_history tool.
func (s *Server) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := int(request.GetFloat("limit", defaultHistoryLimit))
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	records, err := s.stateProvider.GetHistory(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	sessions := make([]map[string]any, 0, len(records))
	for _, r := range records {
		entry := map[string]any{
			"id":               r.ID,
			"name":             r.Name,
			"break_type":       string(r.BreakType),
			"duration_minutes": r.DurationMinutes,
			"completed":        r.Completed,
			"started_at":       r.StartedAt.Format(time.RFC3339),
			"ended_at":         r.EndedAt.Format(time.RFC3339),
		}
		if r.TaskID != nil {
			entry["task_id"] = *r.TaskID
		}
		if r.GitBranch != "" {
			entry["git_branch"] = r.GitBranch
			entry["git_commit"] = r.GitCommit
		}
		sessions = append(sessions, entry)
	}

	return jsonResult(map[string]any{"sessions": sessions})
}

// handleSetDailyGoal handles the set_daily_goal tool.
func (s *Server) handleSetDailyGoal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	minutes, err := request.RequireFloat("minutes")
	if err != nil {
		return mcp.NewToolResultError("minutes is required"), nil
	}

	progress, err := s.stateProvider.SetDailyGoal(ctx, int(minutes))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set daily goal: %v", err)), nil
	}

	return jsonResult(newProgressView(*progress))
}
