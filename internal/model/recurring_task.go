package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"weekly-planner/internal/calendar"
)

// RecurringTask is the master definition a series of weekly tasks is generated from.
type RecurringTask struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	Title         string     `gorm:"size:100;not null" json:"title"`
	Description   string     `gorm:"size:2000" json:"description"`
	Priority      Priority   `gorm:"size:16;not null;default:MEDIUM" json:"priority"`
	IntervalWeeks int        `gorm:"not null;default:1" json:"intervalWeeks"`
	DayOfWeek     int        `gorm:"not null" json:"dayOfWeek"`
	EndDate       *time.Time `json:"endDate"`
	CompanyID     string     `gorm:"size:64;index;not null" json:"companyId"`
	CreatorID     string     `gorm:"size:36;index;not null" json:"creatorId"`
	Tasks         []Task     `gorm:"foreignKey:RecurringTaskID" json:"-"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (r *RecurringTask) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.EndDate != nil {
		end := calendar.Date(*r.EndDate)
		r.EndDate = &end
	}
	return nil
}

// EndsBefore reports whether the series has stopped before the given week starts.
func (r RecurringTask) EndsBefore(weekStart time.Time) bool {
	return r.EndDate != nil && r.EndDate.Before(weekStart)
}
