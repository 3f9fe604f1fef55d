package service

import (
	"context"
	"math"
	"sort"
	"time"

	"weekly-planner/internal/calendar"
	"weekly-planner/internal/model"
	"weekly-planner/internal/repository"
)

// ReportMeta identifies the reported week.
type ReportMeta struct {
	WeekStart   string    `json:"weekStart"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ReportStats summarizes completion for a week.
type ReportStats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	CompletionRate int `json:"completionRate"`
}

// ReportItem is the projection of a task shown in a report list.
type ReportItem struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Priority model.Priority `json:"priority"`
}

// Report is the presentation-neutral weekly summary consumed by every renderer.
type Report struct {
	Meta        ReportMeta   `json:"meta"`
	Stats       ReportStats  `json:"stats"`
	Highlights  []ReportItem `json:"highlights"`
	ActionItems []ReportItem `json:"actionItems"`
}

// ReportService aggregates the tasks of one week into a Report.
type ReportService struct {
	taskRepo *repository.TaskRepository
	loc      *time.Location
	now      func() time.Time
}

func NewReportService(taskRepo *repository.TaskRepository, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{taskRepo: taskRepo, loc: loc, now: time.Now}
}

// BuildReport parses raw (YYYY-MM-DD or RFC 3339) and reports the week containing it.
func (s *ReportService) BuildReport(ctx context.Context, raw string) (*Report, error) {
	if raw == "" {
		return nil, model.NewValidationError("date", "is required")
	}
	target, err := calendar.ParseDate(raw, s.loc)
	if err != nil {
		return nil, model.NewValidationError("date", "must be a date (YYYY-MM-DD)")
	}
	return s.Build(ctx, target)
}

// Build reports the Monday-to-Sunday week containing target.
func (s *ReportService) Build(ctx context.Context, target time.Time) (*Report, error) {
	day := calendar.Date(target)
	start := calendar.WeekStart(day)

	tasks, err := s.taskRepo.ListByWeekRange(ctx, start, calendar.WeekEnd(day))
	if err != nil {
		return nil, err
	}
	sortByPriority(tasks)

	report := &Report{
		Meta: ReportMeta{
			WeekStart:   start.Format(calendar.DateLayout),
			GeneratedAt: s.now().UTC(),
		},
		Highlights:  []ReportItem{},
		ActionItems: []ReportItem{},
	}
	for _, task := range tasks {
		item := ReportItem{ID: task.ID, Title: task.Title, Priority: task.Priority}
		if task.IsCompleted() {
			report.Highlights = append(report.Highlights, item)
		} else {
			report.ActionItems = append(report.ActionItems, item)
		}
	}

	total := len(tasks)
	completed := len(report.Highlights)
	report.Stats = ReportStats{
		Total:          total,
		Completed:      completed,
		Pending:        total - completed,
		CompletionRate: completionRate(completed, total),
	}
	return report, nil
}

func completionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// sortByPriority orders HIGH, MEDIUM, LOW and keeps the incoming (creation) order for ties.
func sortByPriority(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority.Rank() > tasks[j].Priority.Rank()
	})
}
