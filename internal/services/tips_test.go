package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hearthlabs/hearth-backend/internal/types"
)

func tipOfType(tips []Tip, tt TipType) (Tip, bool) {
	for _, tip := range tips {
		if tip.Type == tt {
			return tip, true
		}
	}
	return Tip{}, false
}

func TestGenerateTipsZeroCompletions(t *testing.T) {
	now := time.Now()
	child := testChild(6, now)
	insights := emptyChildInsights()

	tips := GenerateTips(child, insights, nil, now)
	if len(tips) == 0 {
		t.Fatalf("zero-completion child should still get tips")
	}
	if tips[0].Type != TipReengagement || tips[0].Priority != 100 {
		t.Fatalf("first tip=%+v, want reengagement at priority 100", tips[0])
	}
	if !strings.Contains(tips[0].Message, "Ready to start") {
		t.Fatalf("zero-completion reengagement message=%q", tips[0].Message)
	}
	if !strings.Contains(tips[0].Message, child.Name) {
		t.Fatalf("reengagement tip should name the child, got %q", tips[0].Message)
	}
	if _, ok := tipOfType(tips, TipDevelopmental); !ok {
		t.Fatalf("expected a developmental tip, got %v", tips)
	}
	// Under five completions the balance tip suggests exploring.
	balance, ok := tipOfType(tips, TipCategoryBalance)
	if !ok || balance.Priority != 75 {
		t.Fatalf("balance tip=%+v, want exploration at priority 75", balance)
	}
}

func TestGenerateTipsReengagementAfterLapse(t *testing.T) {
	now := time.Now()
	child := testChild(6, now)

	lapsed := now.Add(-8 * 24 * time.Hour)
	insights := emptyChildInsights()
	insights.TotalCompletions = 6
	insights.LastCompletedAt = &lapsed

	tips := GenerateTips(child, insights, nil, now)
	reengage, ok := tipOfType(tips, TipReengagement)
	if !ok || !strings.Contains(reengage.Message, "over a week") {
		t.Fatalf("lapsed child should get a lapse tip, got %v", tips)
	}

	// Active in the last week: no reengagement nag.
	recent := now.Add(-2 * 24 * time.Hour)
	insights.LastCompletedAt = &recent
	tips = GenerateTips(child, insights, nil, now)
	if _, ok := tipOfType(tips, TipReengagement); ok {
		t.Fatalf("recently active child should not get a reengagement tip")
	}
}

func TestCategoryBalanceTipThresholds(t *testing.T) {
	base := func(total int, percentages map[string]float64) *ChildInsights {
		insights := emptyChildInsights()
		insights.TotalCompletions = total
		insights.CategoryPercentages = percentages
		return insights
	}

	t.Run("dominant_over_forty_percent", func(t *testing.T) {
		tip, ok := categoryBalanceTip(base(10, map[string]float64{"play": 0.41, "talk": 0.59}))
		if !ok || tip.Priority != 80 || !strings.Contains(tip.Message, "play") {
			t.Fatalf("tip=%+v ok=%v, want dominant play tip at 80", tip, ok)
		}
	})

	t.Run("exactly_forty_percent_not_dominant", func(t *testing.T) {
		tip, ok := categoryBalanceTip(base(5, map[string]float64{"play": 0.4, "talk": 0.4, "create": 0.2}))
		if ok {
			t.Fatalf("40%% exactly should not trigger the dominance tip, got %+v", tip)
		}
	})

	t.Run("underused_needs_ten_completions", func(t *testing.T) {
		percentages := map[string]float64{"play": 0.35, "talk": 0.35, "create": 0.25, "move": 0.05}
		if _, ok := categoryBalanceTip(base(8, percentages)); ok {
			t.Fatalf("gap tip requires ten completions")
		}
		tip, ok := categoryBalanceTip(base(20, percentages))
		if !ok || !strings.Contains(tip.Message, "move") {
			t.Fatalf("tip=%+v ok=%v, want underused move tip", tip, ok)
		}
	})
}

func TestStreakTipTiers(t *testing.T) {
	now := time.Now()
	child := testChild(6, now)
	recent := now.Add(-24 * time.Hour)

	cases := []struct {
		streak  int
		want    string
		present bool
	}{
		{streak: 2, present: false},
		{streak: 3, want: "streak going", present: true},
		{streak: 5, want: "momentum", present: true},
		{streak: 9, want: "full week", present: true},
	}
	for _, tc := range cases {
		insights := emptyChildInsights()
		insights.TotalCompletions = 6
		insights.LastCompletedAt = &recent
		insights.CurrentStreak = tc.streak

		tips := GenerateTips(child, insights, nil, now)
		tip, ok := tipOfType(tips, TipStreak)
		if ok != tc.present {
			t.Fatalf("streak=%d: tip present=%v, want %v", tc.streak, ok, tc.present)
		}
		if tc.present {
			if tip.Priority != 70 {
				t.Fatalf("streak tip priority=%d, want 70", tip.Priority)
			}
			if !strings.Contains(tip.Message, tc.want) {
				t.Fatalf("streak=%d message=%q, want substring %q", tc.streak, tip.Message, tc.want)
			}
		}
	}
}

func TestEngagementTips(t *testing.T) {
	note := "we talked for ages"
	longDuration := 600

	t.Run("reflection_habit", func(t *testing.T) {
		recent := []*types.Completion{
			{ID: uuid.New(), ReflectionNote: &note},
			{ID: uuid.New(), ReflectionNote: &note},
			{ID: uuid.New()},
		}
		tips := engagementTips(emptyChildInsights(), recent)
		if len(tips) != 1 || !strings.Contains(tips[0].Message, "reflection notes") {
			t.Fatalf("tips=%v, want one reflection tip", tips)
		}
	})

	t.Run("long_durations_need_three_samples", func(t *testing.T) {
		recent := []*types.Completion{
			{ID: uuid.New(), DurationSeconds: &longDuration},
			{ID: uuid.New(), DurationSeconds: &longDuration},
		}
		if tips := engagementTips(emptyChildInsights(), recent); len(tips) != 0 {
			t.Fatalf("two samples should not trigger the duration tip, got %v", tips)
		}
		recent = append(recent, &types.Completion{ID: uuid.New(), DurationSeconds: &longDuration})
		tips := engagementTips(emptyChildInsights(), recent)
		if len(tips) != 1 || !strings.Contains(tips[0].Message, "run long") {
			t.Fatalf("tips=%v, want one duration tip", tips)
		}
	})

	t.Run("favorite_category", func(t *testing.T) {
		insights := emptyChildInsights()
		insights.FavoriteCategories = []string{"play"}
		insights.CategoryCounts = map[string]int{"play": 4}
		tips := engagementTips(insights, nil)
		if len(tips) != 1 || !strings.Contains(tips[0].Message, "play") {
			t.Fatalf("tips=%v, want one favorite-category tip", tips)
		}
	})
}

func TestGenerateTipsCapsAtFive(t *testing.T) {
	now := time.Now()
	child := testChild(6, now)

	lapsed := now.Add(-8 * 24 * time.Hour)
	insights := emptyChildInsights()
	insights.TotalCompletions = 12
	insights.LastCompletedAt = &lapsed
	insights.CurrentStreak = 4
	insights.CategoryPercentages = map[string]float64{"play": 0.5, "talk": 0.5}
	insights.FavoriteCategories = []string{"play"}
	insights.CategoryCounts = map[string]int{"play": 6, "talk": 6}

	note := "good"
	longDuration := 600
	var recent []*types.Completion
	for i := 0; i < 4; i++ {
		recent = append(recent, &types.Completion{
			ID: uuid.New(), ReflectionNote: &note, DurationSeconds: &longDuration,
		})
	}

	tips := GenerateTips(child, insights, recent, now)
	if len(tips) != maxTips {
		t.Fatalf("got %d tips, want capped at %d", len(tips), maxTips)
	}
	for i := 1; i < len(tips); i++ {
		if tips[i].Priority > tips[i-1].Priority {
			t.Fatalf("tips not sorted by priority: %v", tips)
		}
	}
	if tips[0].Priority != 100 {
		t.Fatalf("highest tip priority=%d, want 100", tips[0].Priority)
	}
}
