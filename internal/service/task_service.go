package service

import (
	"context"
	"log"
	"strings"
	"time"

	"weekly-planner/internal/calendar"
	"weekly-planner/internal/model"
	"weekly-planner/internal/notify"
	"weekly-planner/internal/repository"
)

// Actor is the caller a request acts for. Authentication is out of scope, so the
// transport layer fills it from headers or configured defaults.
type Actor struct {
	UserID    string
	CompanyID string
}

// RecurrenceInput turns a new task into the first instance of a weekly series.
type RecurrenceInput struct {
	Enabled       bool   `json:"enabled"`
	IntervalWeeks *int   `json:"intervalWeeks" validate:"omitempty,min=1,max=52"`
	DayOfWeek     *int   `json:"dayOfWeek" validate:"required,min=0,max=6"`
	EndDate       string `json:"endDate"`
}

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string           `json:"title" validate:"min=3,max=100"`
	Description string           `json:"description" validate:"max=2000"`
	Priority    model.Priority   `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	AssigneeIDs []string         `json:"assigneeIds" validate:"required,dive,uuid"`
	WeekStart   string           `json:"weekStart" validate:"required"`
	DueTime     string           `json:"dueTime" validate:"required"`
	Tags        []string         `json:"tags" validate:"dive,max=64"`
	Recurrence  *RecurrenceInput `json:"recurrence"`
}

// TaskUpdate is a partial update; nil fields are left unchanged.
type TaskUpdate struct {
	Status   *model.Status   `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
	Title    *string         `json:"title" validate:"omitempty,min=3,max=100"`
	Priority *model.Priority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo *repository.TaskRepository
	notifier notify.Notifier
	loc      *time.Location
	now      func() time.Time
}

func NewTaskService(taskRepo *repository.TaskRepository, notifier notify.Notifier, loc *time.Location) *TaskService {
	if loc == nil {
		loc = time.Local
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &TaskService{taskRepo: taskRepo, notifier: notifier, loc: loc, now: time.Now}
}

func (s *TaskService) CreateTask(ctx context.Context, actor Actor, input TaskInput) (*model.Task, error) {
	input.Title = strings.TrimSpace(input.Title)

	verr := validateInput(input)
	weekStart, err := time.Parse(calendar.DateLayout, strings.TrimSpace(input.WeekStart))
	if input.WeekStart != "" && (err != nil || !calendar.IsMonday(weekStart)) {
		verr = merge(verr, "weekStart", "must be a valid Monday (YYYY-MM-DD)")
	}
	dueAt, err := time.Parse(time.RFC3339, strings.TrimSpace(input.DueTime))
	if input.DueTime != "" && err != nil {
		verr = merge(verr, "dueTime", "must be an RFC 3339 timestamp")
	}
	var endDate *time.Time
	if input.Recurrence != nil && strings.TrimSpace(input.Recurrence.EndDate) != "" {
		d, err := calendar.ParseDate(input.Recurrence.EndDate, s.loc)
		if err != nil {
			verr = merge(verr, "recurrence.endDate", "must be a date (YYYY-MM-DD)")
		} else {
			endDate = &d
		}
	}
	if verr != nil {
		return nil, verr
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	task := &model.Task{
		Title:       input.Title,
		Description: input.Description,
		Priority:    priority,
		Status:      model.StatusPending,
		CompanyID:   actor.CompanyID,
		WeekStart:   weekStart,
		DueAt:       dueAt,
	}

	var series *model.RecurringTask
	if input.Recurrence != nil && input.Recurrence.Enabled {
		interval := 1
		if input.Recurrence.IntervalWeeks != nil {
			interval = *input.Recurrence.IntervalWeeks
		}
		series = &model.RecurringTask{
			Title:         task.Title,
			Description:   task.Description,
			Priority:      priority,
			IntervalWeeks: interval,
			DayOfWeek:     *input.Recurrence.DayOfWeek,
			EndDate:       endDate,
			CompanyID:     actor.CompanyID,
		}
	}

	assigneeIDs := uniqueStrings(input.AssigneeIDs)
	created, err := s.taskRepo.CreateWithRelations(ctx, repository.CreateParams{
		Task:        task,
		Creator:     model.User{ID: actor.UserID, CompanyID: actor.CompanyID},
		Series:      series,
		AssigneeIDs: assigneeIDs,
		TagNames:    uniqueStrings(input.Tags),
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[info] task created id=%s week=%s recurring=%t", created.ID, created.WeekStart.Format(calendar.DateLayout), series != nil)

	for _, uid := range assigneeIDs {
		s.notifier.Notify(ctx, uid, notify.KindAssigned, map[string]any{
			"taskId": created.ID,
			"title":  created.Title,
		})
	}
	return created, nil
}

// UpdateTask patches status, title or priority. Completing a task tells its creator.
func (s *TaskService) UpdateTask(ctx context.Context, id string, input TaskUpdate) (*model.Task, error) {
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		input.Title = &trimmed
	}
	if verr := validateInput(input); verr != nil {
		return nil, verr
	}

	task, err := s.taskRepo.Update(ctx, id, repository.TaskPatch{
		Status:   input.Status,
		Title:    input.Title,
		Priority: input.Priority,
	})
	if err != nil {
		return nil, err
	}

	if input.Status != nil && *input.Status == model.StatusCompleted {
		s.notifier.Notify(ctx, task.CreatorID, notify.KindGenerated, map[string]any{
			"title":  "Task Completed: " + task.Title,
			"status": string(model.StatusCompleted),
		})
	}
	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, id)
}

// DeleteTask removes one instance; the recurring master, if any, is untouched.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	return s.taskRepo.Delete(ctx, id)
}

// ListWeek returns the tasks of the week containing raw (YYYY-MM-DD or RFC 3339),
// or of the current week when raw is empty.
func (s *TaskService) ListWeek(ctx context.Context, raw string) (time.Time, []model.Task, error) {
	day := calendar.Date(s.now().In(s.loc))
	if strings.TrimSpace(raw) != "" {
		parsed, err := calendar.ParseDate(raw, s.loc)
		if err != nil {
			return time.Time{}, nil, model.NewValidationError("date", "must be a date (YYYY-MM-DD)")
		}
		day = parsed
	}
	start := calendar.WeekStart(day)
	tasks, err := s.taskRepo.ListByWeekRange(ctx, start, calendar.WeekEnd(day))
	if err != nil {
		return time.Time{}, nil, err
	}
	sortByPriority(tasks)
	return start, tasks, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
