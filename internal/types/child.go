package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Age brackets used for prompt targeting.
const (
	AgeBracketInfant     = "infant"
	AgeBracketToddler    = "toddler"
	AgeBracketElementary = "elementary"
	AgeBracketTeen       = "teen"
	AgeBracketYoungAdult = "young_adult"
)

type Child struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID            uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Name              string         `gorm:"not null;column:name" json:"name"`
	BirthDate         time.Time      `gorm:"not null;column:birth_date" json:"birth_date"`
	Interests         datatypes.JSON `gorm:"column:interests" json:"interests"`
	PersonalityTraits datatypes.JSON `gorm:"column:personality_traits" json:"personality_traits"`
	CurrentChallenges datatypes.JSON `gorm:"column:current_challenges" json:"current_challenges"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Child) TableName() string {
	return "child"
}

// Age is always derived from the birth date; it is never stored.
func (c *Child) Age(now time.Time) int {
	if c == nil || c.BirthDate.IsZero() {
		return 0
	}
	years := now.Year() - c.BirthDate.Year()
	anniversary := c.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func (c *Child) AgeBracket(now time.Time) string {
	age := c.Age(now)
	switch {
	case age < 2:
		return AgeBracketInfant
	case age <= 4:
		return AgeBracketToddler
	case age <= 11:
		return AgeBracketElementary
	case age <= 17:
		return AgeBracketTeen
	default:
		return AgeBracketYoungAdult
	}
}

func (c *Child) InterestList() []string {
	if c == nil {
		return nil
	}
	return decodeStringList(c.Interests)
}

func (c *Child) ChallengeList() []string {
	if c == nil {
		return nil
	}
	return decodeStringList(c.CurrentChallenges)
}

func (c *Child) TraitList() []string {
	if c == nil {
		return nil
	}
	return decodeStringList(c.PersonalityTraits)
}
