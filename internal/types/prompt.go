package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AgeCategoryAll marks a prompt as suitable for every age bracket.
const AgeCategoryAll = "all"

type Prompt struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title            string         `gorm:"not null;column:title" json:"title"`
	Description      string         `gorm:"column:description" json:"description"`
	ActivityText     string         `gorm:"column:activity_text" json:"activity_text"`
	Category         string         `gorm:"not null;index;column:category" json:"category"`
	AgeCategories    datatypes.JSON `gorm:"column:age_categories" json:"age_categories"`
	Tags             datatypes.JSON `gorm:"column:tags" json:"tags"`
	EstimatedMinutes int            `gorm:"not null;default:5;column:estimated_minutes" json:"estimated_minutes"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (Prompt) TableName() string {
	return "prompt"
}

func (p *Prompt) TagList() []string {
	if p == nil {
		return nil
	}
	return decodeStringList(p.Tags)
}

func (p *Prompt) AgeCategoryList() []string {
	if p == nil {
		return nil
	}
	return decodeStringList(p.AgeCategories)
}

// PrimaryTag is the first tag, or "none" for untagged prompts.
func (p *Prompt) PrimaryTag() string {
	tags := p.TagList()
	if len(tags) == 0 {
		return "none"
	}
	return tags[0]
}

func (p *Prompt) MatchesAgeBracket(bracket string) bool {
	for _, ac := range p.AgeCategoryList() {
		if ac == bracket || ac == AgeCategoryAll {
			return true
		}
	}
	return false
}

// IsFaithTagged reports whether the prompt carries a faith-oriented tag.
func (p *Prompt) IsFaithTagged() bool {
	for _, tag := range p.TagList() {
		t := strings.ToLower(tag)
		if strings.Contains(t, "faith") || strings.Contains(t, "lds") {
			return true
		}
	}
	return false
}
