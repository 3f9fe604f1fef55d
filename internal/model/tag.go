package model

import "time"

// Tag labels tasks. Tags are created on first reference and never removed.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Name      string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"-"`
}
