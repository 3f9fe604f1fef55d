package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"weekly-planner/internal/calendar"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Rank orders priorities from LOW (1) to HIGH (3). Unknown values rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Task is a single work item tied to one week. At most one task may exist per
// (title, company, week start).
type Task struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Title           string    `gorm:"size:100;not null;uniqueIndex:idx_task_title_company_week" json:"title"`
	Description     string    `gorm:"size:2000" json:"description"`
	Priority        Priority  `gorm:"size:16;not null;default:MEDIUM" json:"priority"`
	Status          Status    `gorm:"size:16;not null;default:PENDING;index" json:"status"`
	CompanyID       string    `gorm:"size:64;not null;uniqueIndex:idx_task_title_company_week" json:"companyId"`
	WeekStart       time.Time `gorm:"not null;uniqueIndex:idx_task_title_company_week;index" json:"weekStart"`
	DueAt           time.Time `gorm:"not null;index" json:"dueAt"`
	RecurringTaskID *string   `gorm:"size:36;index" json:"recurringTaskId"`
	CreatorID       string    `gorm:"size:36;index;not null" json:"creatorId"`
	Assignees       []User    `gorm:"many2many:task_assignees;" json:"assignees,omitempty"`
	Tags            []Tag     `gorm:"many2many:task_tags;" json:"tags,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave keeps the week key a civil date and instants in UTC so range
// queries compare consistently on every driver.
func (t *Task) BeforeSave(*gorm.DB) error {
	if !t.WeekStart.IsZero() {
		t.WeekStart = calendar.Date(t.WeekStart)
	}
	if !t.DueAt.IsZero() {
		t.DueAt = t.DueAt.UTC()
	}
	return nil
}

// IsCompleted reports whether the task counts as done in reports.
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}
