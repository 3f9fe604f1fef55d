package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a team member that can create tasks and be assigned to them.
type User struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Email          string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CompanyID      string    `gorm:"size:64;index;not null" json:"companyId"`
	TelegramChatID *int64    `gorm:"uniqueIndex" json:"telegramChatId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
