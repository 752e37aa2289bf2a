// Package services implements the application layer (use cases)
// following hexagonal architecture principles.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"github.com/xvierd/wellflow/internal/domain"
	"github.com/xvierd/wellflow/internal/ports"
)

// TaskService handles task-related use cases. The whole collection is one
// JSON blob under ports.KeyTasks.
type TaskService struct {
	mu     sync.Mutex
	kv     ports.KVStore
	ledger *LedgerService
	clock  ports.Clock
	logger *slog.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(kv ports.KVStore, ledger *LedgerService, clock ports.Clock, logger *slog.Logger) *TaskService {
	return &TaskService{
		kv:     kv,
		ledger: ledger,
		clock:  clock,
		logger: loggerOrDefault(logger),
	}
}

// Today returns the current calendar day.
func (s *TaskService) Today() domain.Date {
	return domain.DateOf(s.clock.Now())
}

func (s *TaskService) load(ctx context.Context) ([]domain.Task, error) {
	raw, ok, err := s.kv.Get(ctx, ports.KeyTasks)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var tasks []domain.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		s.logger.Warn("discarding unreadable task list", "error", err)
		return nil, nil
	}
	return tasks, nil
}

func (s *TaskService) save(ctx context.Context, tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	if err := s.kv.Set(ctx, ports.KeyTasks, string(data)); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}

func indexOf(tasks []domain.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// nextOrder returns the order slot after the last unscheduled task on day.
func nextOrder(tasks []domain.Task, day domain.Date) int {
	next := 0
	for _, t := range domain.OccurrencesForDate(tasks, day) {
		if !t.IsScheduled() && t.Order >= next {
			next = t.Order + 1
		}
	}
	return next
}

// AddTask creates a new task. A missing date means today.
func (s *TaskService) AddTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := in.Date
	if date.IsZero() {
		date = s.Today()
	}

	task, err := domain.NewTask(in.Title, in.Category, date)
	if err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}
	in.Date = date
	in.ApplyTo(task)
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}

	tasks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	task.Order = nextOrder(tasks, date)
	tasks = append(tasks, *task)

	if err := s.save(ctx, tasks); err != nil {
		return nil, err
	}

	s.logger.Debug("task added", "id", task.ID, "repeat", task.Repeat)
	return task, nil
}

// EditTask replaces the editable fields of a task. Editing a recurring task
// edits the whole series.
func (s *TaskService) EditTask(ctx context.Context, id string, in domain.TaskInput) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return nil, domain.ErrTaskNotFound
	}

	edited := tasks[i]
	in.ApplyTo(&edited)
	edited.UpdatedAt = s.clock.Now()
	if err := edited.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}
	tasks[i] = edited

	if err := s.save(ctx, tasks); err != nil {
		return nil, err
	}
	return &edited, nil
}

// GetTask retrieves a single task by ID.
func (s *TaskService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	tasks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return nil, domain.ErrTaskNotFound
	}
	return &tasks[i], nil
}

// ListTasks returns every stored task definition.
func (s *TaskService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return s.load(ctx)
}

// ToggleTask flips a task's done flag. Marking it done awards XP; marking
// it not done again keeps the XP already awarded. The toggle stands even
// when the award cannot be stored.
func (s *TaskService) ToggleTask(ctx context.Context, id string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return nil, domain.ErrTaskNotFound
	}

	done := tasks[i].Toggle()
	if err := s.save(ctx, tasks); err != nil {
		return nil, err
	}

	if done && s.ledger != nil {
		if _, err := s.ledger.AwardXP(ctx, tasks[i].XPReward()); err != nil {
			s.logger.Warn("failed to award task xp", "task", id, "xp", tasks[i].XPReward(), "error", err)
		}
	}

	task := tasks[i]
	return &task, nil
}

// OccurrencesForDate returns the sorted occurrences of a day.
func (s *TaskService) OccurrencesForDate(ctx context.Context, day domain.Date) ([]domain.Task, error) {
	tasks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	occ := domain.OccurrencesForDate(tasks, day)
	domain.SortOccurrences(occ)
	return occ, nil
}

// OccurrencesInRange returns the sorted occurrences of each day in [from, to].
func (s *TaskService) OccurrencesInRange(ctx context.Context, from, to domain.Date) (map[domain.Date][]domain.Task, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range ends %s before it starts %s", domain.ErrInvalidSchedule, to, from)
	}
	tasks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.OccurrencesInRange(tasks, from, to), nil
}

// DeleteOccurrence hides the occurrence on day. A one-off task is removed
// when day is its date; any other day is not one of its occurrences.
func (s *TaskService) DeleteOccurrence(ctx context.Context, id string, day domain.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return domain.ErrTaskNotFound
	}

	switch {
	case tasks[i].IsRecurring():
		tasks[i].AddException(day)
	case tasks[i].Date == day:
		tasks = append(tasks[:i], tasks[i+1:]...)
	default:
		return fmt.Errorf("%w: %s is on %s, not %s", domain.ErrTaskNotFound, tasks[i].Title, tasks[i].Date, day)
	}
	return s.save(ctx, tasks)
}

// DeleteSeries removes a task and every occurrence of it.
func (s *TaskService) DeleteSeries(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return domain.ErrTaskNotFound
	}
	return s.save(ctx, append(tasks[:i], tasks[i+1:]...))
}

// Reorder sets the sort position of an unscheduled task.
func (s *TaskService) Reorder(ctx context.Context, id string, order int) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return nil, domain.ErrTaskNotFound
	}
	if tasks[i].IsScheduled() {
		return nil, fmt.Errorf("%w: time-blocked tasks are ordered by start time", domain.ErrInvalidSchedule)
	}

	tasks[i].Order = order
	tasks[i].UpdatedAt = s.clock.Now()
	if err := s.save(ctx, tasks); err != nil {
		return nil, err
	}
	task := tasks[i]
	return &task, nil
}

// FindByTitle does a fuzzy search for tasks by title, best match first.
// An exact ID match wins outright.
func (s *TaskService) FindByTitle(ctx context.Context, query string) ([]domain.Task, error) {
	tasks, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks for fuzzy search: %w", err)
	}

	query = strings.TrimSpace(query)
	if i := indexOf(tasks, query); i >= 0 {
		return []domain.Task{tasks[i]}, nil
	}

	titles := make([]string, len(tasks))
	for i, task := range tasks {
		titles[i] = task.Title
	}

	var result []domain.Task
	for _, match := range fuzzy.Find(query, titles) {
		result = append(result, tasks[match.Index])
	}
	return result, nil
}
