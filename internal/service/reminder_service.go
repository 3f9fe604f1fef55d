package service

import (
	"context"
	"log"
	"time"

	"weekly-planner/internal/calendar"
	"weekly-planner/internal/notify"
	"weekly-planner/internal/repository"
)

// DefaultReminderWindow is how far ahead of now due tasks are reminded.
const DefaultReminderWindow = 24 * time.Hour

// ReminderService nudges people about unfinished tasks that are about to be due.
type ReminderService struct {
	taskRepo *repository.TaskRepository
	notifier notify.Notifier
	window   time.Duration
}

func NewReminderService(taskRepo *repository.TaskRepository, notifier notify.Notifier, window time.Duration) *ReminderService {
	if window <= 0 {
		window = DefaultReminderWindow
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &ReminderService{taskRepo: taskRepo, notifier: notifier, window: window}
}

// SendDueReminders notifies the assignees (or the creator of unassigned tasks) of every
// unfinished task due in (now, now+window]. It returns the number of tasks reminded.
func (s *ReminderService) SendDueReminders(ctx context.Context, now time.Time) (int, error) {
	tasks, err := s.taskRepo.ListDueBetween(ctx, now, now.Add(s.window))
	if err != nil {
		return 0, err
	}

	for _, task := range tasks {
		payload := map[string]any{
			"taskId":    task.ID,
			"title":     task.Title,
			"dueAt":     task.DueAt.UTC().Format(time.RFC3339),
			"weekStart": task.WeekStart.Format(calendar.DateLayout),
		}
		if len(task.Assignees) == 0 {
			s.notifier.Notify(ctx, task.CreatorID, notify.KindReminder, payload)
			continue
		}
		for _, user := range task.Assignees {
			s.notifier.Notify(ctx, user.ID, notify.KindReminder, payload)
		}
	}

	if len(tasks) > 0 {
		log.Printf("[info] reminders sent for %d tasks", len(tasks))
	}
	return len(tasks), nil
}
