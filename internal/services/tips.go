package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/hearthlabs/hearth-backend/internal/types"
)

type TipType string

const (
	TipReengagement    TipType = "reengagement"
	TipDevelopmental   TipType = "developmental"
	TipCategoryBalance TipType = "category_balance"
	TipStreak          TipType = "streak"
	TipEngagement      TipType = "engagement"
)

const (
	maxTips = 5

	// The tip generator's dominance threshold is looser than the scorer's
	// 30% on purpose: a tip nags, a score nudges.
	tipDominantShare = 0.40

	tipUnderusedShare       = 0.10
	tipMinCompletionsForMix = 5
	tipMinCompletionsForGap = 10

	reengagementAfter = 7 * 24 * time.Hour
)

type Tip struct {
	Type     TipType `json:"type"`
	Priority int     `json:"priority"`
	Message  string  `json:"message"`
}

var developmentalTips = []struct {
	maxAge  int
	message string
}{
	{1, "At this age, connection is all about presence: narrate what you're doing, make eye contact, and follow their gaze."},
	{4, "Toddlers learn through repetition and play. Short, silly, repeatable activities beat elaborate ones."},
	{7, "Early graders love having a job. Let them lead an activity and watch their confidence grow."},
	{11, "Kids this age open up sideways, during an activity, not face-to-face. Keep hands busy and questions light."},
	{14, "Young teens need low-pressure time together. Shared activities with no agenda tell them the door is open."},
	{18, "Older teens connect around their world. Let them pick the activity, even if it's not your thing."},
}

// GenerateTips is a pure rule engine: no I/O, cannot fail. It produces up
// to five coaching tips ordered by priority.
func GenerateTips(child *types.Child, insights *ChildInsights, recent []*types.Completion, now time.Time) []Tip {
	var tips []Tip

	// Re-engagement outranks everything.
	if insights.TotalCompletions == 0 {
		tips = append(tips, Tip{
			Type:     TipReengagement,
			Priority: 100,
			Message:  fmt.Sprintf("Ready to start? Pick any five-minute activity with %s today.", child.Name),
		})
	} else if insights.LastCompletedAt != nil && now.Sub(*insights.LastCompletedAt) > reengagementAfter {
		tips = append(tips, Tip{
			Type:     TipReengagement,
			Priority: 100,
			Message:  fmt.Sprintf("It's been over a week since your last activity with %s. Even five minutes reconnects.", child.Name),
		})
	}

	age := child.Age(now)
	for _, dt := range developmentalTips {
		if age <= dt.maxAge {
			tips = append(tips, Tip{Type: TipDevelopmental, Priority: 90, Message: dt.message})
			break
		}
	}

	if tip, ok := categoryBalanceTip(insights); ok {
		tips = append(tips, tip)
	}

	if insights.CurrentStreak >= 3 {
		var msg string
		switch {
		case insights.CurrentStreak >= 7:
			msg = fmt.Sprintf("A full week streak! %d days of showing up. That is how habits stick.", insights.CurrentStreak)
		case insights.CurrentStreak >= 5:
			msg = fmt.Sprintf("%d days in a row. You're building real momentum.", insights.CurrentStreak)
		default:
			msg = fmt.Sprintf("%d-day streak going. Keep it alive today!", insights.CurrentStreak)
		}
		tips = append(tips, Tip{Type: TipStreak, Priority: 70, Message: msg})
	}

	tips = append(tips, engagementTips(insights, recent)...)

	sort.SliceStable(tips, func(i, j int) bool {
		return tips[i].Priority > tips[j].Priority
	})
	if len(tips) > maxTips {
		tips = tips[:maxTips]
	}
	return tips
}

func categoryBalanceTip(insights *ChildInsights) (Tip, bool) {
	if insights.TotalCompletions < tipMinCompletionsForMix {
		return Tip{
			Type:     TipCategoryBalance,
			Priority: 75,
			Message:  "Try activities from a few different categories to discover what clicks.",
		}, true
	}
	for category, share := range insights.CategoryPercentages {
		if share > tipDominantShare {
			return Tip{
				Type:     TipCategoryBalance,
				Priority: 80,
				Message:  fmt.Sprintf("Most of your time goes to %s activities. Mixing it up keeps things fresh.", category),
			}, true
		}
	}
	if insights.TotalCompletions >= tipMinCompletionsForGap {
		for category, share := range insights.CategoryPercentages {
			if share > 0 && share < tipUnderusedShare {
				return Tip{
					Type:     TipCategoryBalance,
					Priority: 75,
					Message:  fmt.Sprintf("You've barely explored %s activities. Worth another look?", category),
				}, true
			}
		}
	}
	return Tip{}, false
}

func engagementTips(insights *ChildInsights, recent []*types.Completion) []Tip {
	var tips []Tip

	if len(recent) > 0 {
		noted := 0
		for _, c := range recent {
			if c.HasReflectionNote() {
				noted++
			}
		}
		if float64(noted)/float64(len(recent)) > 0.5 {
			tips = append(tips, Tip{
				Type:     TipEngagement,
				Priority: 60,
				Message:  "Your reflection notes are a goldmine. Reading old ones together makes a lovely activity.",
			})
		}
	}

	durationSum, durationCount := 0, 0
	for _, c := range recent {
		if d, ok := c.Duration(); ok {
			durationSum += d
			durationCount++
		}
	}
	if durationCount >= 3 && float64(durationSum)/float64(durationCount) > 7*60 {
		tips = append(tips, Tip{
			Type:     TipEngagement,
			Priority: 60,
			Message:  "Your activities regularly run long, a sign they're landing. Consider trying a deeper one.",
		})
	}

	if len(insights.FavoriteCategories) > 0 {
		top := insights.FavoriteCategories[0]
		if insights.CategoryCounts[top] >= 3 {
			tips = append(tips, Tip{
				Type:     TipEngagement,
				Priority: 60,
				Message:  fmt.Sprintf("%s activities are clearly a hit. Lean into what works.", top),
			})
		}
	}
	return tips
}
