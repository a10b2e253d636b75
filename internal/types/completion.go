package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Completion struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	PromptID        uuid.UUID  `gorm:"type:uuid;not null;index;column:prompt_id" json:"prompt_id"`
	ChildID         *uuid.UUID `gorm:"type:uuid;index;column:child_id" json:"child_id,omitempty"`
	CompletedAt     time.Time  `gorm:"not null;index;column:completed_at" json:"completed_at"`
	CompletionDate  string     `gorm:"not null;column:completion_date" json:"completion_date"`
	ReflectionNote  *string    `gorm:"column:reflection_note" json:"reflection_note,omitempty"`
	DurationSeconds *int       `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
	CreatedAt       time.Time  `gorm:"not null;default:now()" json:"created_at"`

	// Category is the completed prompt's category, joined in on fetch.
	Category string `gorm:"->;-:migration" json:"category,omitempty"`
}

func (Completion) TableName() string {
	return "completion"
}

func (c *Completion) HasReflectionNote() bool {
	return c != nil && c.ReflectionNote != nil && strings.TrimSpace(*c.ReflectionNote) != ""
}

func (c *Completion) Duration() (int, bool) {
	if c == nil || c.DurationSeconds == nil {
		return 0, false
	}
	return *c.DurationSeconds, true
}
