package types

import (
	"time"

	"github.com/google/uuid"
)

type Favorite struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_prompt;column:user_id" json:"user_id"`
	PromptID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_prompt;column:prompt_id" json:"prompt_id"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorite"
}
