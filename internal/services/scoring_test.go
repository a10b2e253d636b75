package services

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hearthlabs/hearth-backend/internal/types"
)

func testChild(age int, now time.Time) *types.Child {
	return &types.Child{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Name:      "Robin",
		BirthDate: now.AddDate(-age, 0, -1),
	}
}

func testPrompt(category string, tags ...string) *types.Prompt {
	return &types.Prompt{
		ID:               uuid.New(),
		Title:            "Test prompt",
		Category:         category,
		AgeCategories:    types.EncodeStringList([]string{types.AgeCategoryAll}),
		Tags:             types.EncodeStringList(tags),
		EstimatedMinutes: 5,
	}
}

func TestBalanceBoostResolutionOrder(t *testing.T) {
	cases := []struct {
		name  string
		under bool
		negl  bool
		over  bool
		want  float64
	}{
		{name: "underrepresented", under: true, want: 1.5},
		{name: "neglected", negl: true, want: 1.3},
		{name: "overrepresented", over: true, want: 0.7},
		{name: "balanced", want: 1.0},
		{name: "under_and_neglected_takes_under", under: true, negl: true, want: 1.5},
		{name: "under_beats_over", under: true, over: true, want: 1.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dist := CategoryDistribution{
				Underrepresented: map[string]bool{},
				Overrepresented:  map[string]bool{},
				Neglected:        map[string]bool{},
			}
			if tc.under {
				dist.Underrepresented["play"] = true
			}
			if tc.negl {
				dist.Neglected["play"] = true
			}
			if tc.over {
				dist.Overrepresented["play"] = true
			}
			if got := balanceBoost(dist, "play"); got != tc.want {
				t.Fatalf("balanceBoost=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestCategoryScoreValues(t *testing.T) {
	// An overrepresented category scores 50*0.7=35, an underrepresented
	// one 50*1.5=75.
	dist := CategoryDistribution{
		Underrepresented: map[string]bool{"create": true},
		Overrepresented:  map[string]bool{"play": true},
		Neglected:        map[string]bool{},
	}

	score, reasons := scoreCategory(testPrompt("play"), dist)
	if score != 35 {
		t.Fatalf("overrepresented category score=%v, want 35", score)
	}
	if len(reasons) != 0 {
		t.Fatalf("overrepresentation penalty must not emit a reason, got %v", reasons)
	}

	score, reasons = scoreCategory(testPrompt("create"), dist)
	if score != 75 {
		t.Fatalf("underrepresented category score=%v, want 75", score)
	}
	if len(reasons) != 1 || reasons[0].Type != ReasonCategoryBalance {
		t.Fatalf("underrepresentation boost should emit a category_balance reason, got %v", reasons)
	}
}

func TestEngagementScoreNeutralWhenNeverCompleted(t *testing.T) {
	prompt := testPrompt("play")
	history := []*types.Completion{
		{ID: uuid.New(), PromptID: uuid.New(), CompletedAt: time.Now(), Category: "play"},
	}
	score, reasons := scoreEngagement(prompt, history, map[uuid.UUID]bool{})
	if score != 50 {
		t.Fatalf("engagement score=%v for never-completed prompt, want 50", score)
	}
	if len(reasons) != 0 {
		t.Fatalf("no reasons expected for neutral engagement, got %v", reasons)
	}
}

func TestEngagementBands(t *testing.T) {
	now := time.Now()
	prompt := testPrompt("play") // 5 minutes estimated
	longDuration := 500          // ratio 500/300 >= 1.5
	note := "good one"
	history := []*types.Completion{
		{ID: uuid.New(), PromptID: prompt.ID, CompletedAt: now, DurationSeconds: &longDuration, ReflectionNote: &note},
	}
	favorites := map[uuid.UUID]bool{prompt.ID: true}

	score, reasons := scoreEngagement(prompt, history, favorites)
	// duration 100*0.4 + reflection 100*0.4 + favorite 100*0.2 = 100
	if score != 100 {
		t.Fatalf("engagement score=%v, want 100", score)
	}
	if len(reasons) != 3 {
		t.Fatalf("expected 3 engagement reasons, got %v", reasons)
	}
}

func TestDurationBandRatios(t *testing.T) {
	prompt := testPrompt("play") // 300s estimate
	cases := []struct {
		name    string
		seconds int
		want    float64
	}{
		{name: "well_over", seconds: 450, want: 100},
		{name: "at_estimate", seconds: 300, want: 75},
		{name: "three_quarters", seconds: 225, want: 50},
		{name: "short", seconds: 100, want: 25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := tc.seconds
			completions := []*types.Completion{{ID: uuid.New(), PromptID: prompt.ID, DurationSeconds: &d}}
			if got := durationBand(prompt, completions); got != tc.want {
				t.Fatalf("durationBand=%v, want %v", got, tc.want)
			}
		})
	}

	t.Run("no_durations_is_neutral", func(t *testing.T) {
		completions := []*types.Completion{{ID: uuid.New(), PromptID: prompt.ID}}
		if got := durationBand(prompt, completions); got != 50 {
			t.Fatalf("durationBand=%v with no recorded durations, want 50", got)
		}
	})
}

func TestReflectionBandShares(t *testing.T) {
	note := "note"
	mk := func(withNote, without int) []*types.Completion {
		var out []*types.Completion
		for i := 0; i < withNote; i++ {
			out = append(out, &types.Completion{ID: uuid.New(), ReflectionNote: &note})
		}
		for i := 0; i < without; i++ {
			out = append(out, &types.Completion{ID: uuid.New()})
		}
		return out
	}
	cases := []struct {
		name     string
		withNote int
		without  int
		want     float64
	}{
		{name: "none", withNote: 0, without: 4, want: 50},
		{name: "three_quarters", withNote: 3, without: 1, want: 100},
		{name: "half", withNote: 2, without: 2, want: 85},
		{name: "quarter", withNote: 1, without: 3, want: 70},
		{name: "some", withNote: 1, without: 9, want: 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := reflectionBand(mk(tc.withNote, tc.without)); got != tc.want {
				t.Fatalf("reflectionBand=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilterScoreAgeAndMatches(t *testing.T) {
	now := time.Now()
	child := testChild(6, now)
	child.CurrentChallenges = types.EncodeStringList([]string{"patience", "sharing"})
	child.Interests = types.EncodeStringList([]string{"dinosaurs"})

	prompt := testPrompt("play", "patience", "sharing", "dinosaurs")
	score, reasons := scoreFilters(prompt, child, now)
	// age 100*0.5 + challenges(2) 100*0.3 + interests(1) 75*0.2 = 95
	if score != 95 {
		t.Fatalf("filter score=%v, want 95", score)
	}
	var challengeReasons, interestReasons int
	for _, r := range reasons {
		switch r.Type {
		case ReasonChallengeMatch:
			challengeReasons++
		case ReasonInterestMatch:
			interestReasons++
		}
	}
	if challengeReasons != 2 || interestReasons != 1 {
		t.Fatalf("reasons=%v, want 2 challenge + 1 interest", reasons)
	}

	// Age mismatch zeroes the age component.
	teenOnly := testPrompt("play")
	teenOnly.AgeCategories = types.EncodeStringList([]string{types.AgeBracketTeen})
	score, _ = scoreFilters(teenOnly, child, now)
	// 0*0.5 + 50*0.3 + 50*0.2 = 25
	if score != 25 {
		t.Fatalf("filter score=%v for age mismatch, want 25", score)
	}
}

func TestScorePromptWeightedTotal(t *testing.T) {
	now := time.Now()
	child := testChild(6, now)
	prompt := testPrompt("play")
	dist := BuildCategoryDistribution(nil, now)

	breakdown := ScorePrompt(prompt, child, nil, map[uuid.UUID]bool{}, dist, DefaultScoreWeights(), now)
	// category 50*0.7 + engagement 50*0.2 + filter (100*0.5+50*0.3+50*0.2)*0.1
	want := 50*0.7 + 50*0.2 + 75*0.1
	if math.Abs(breakdown.TotalScore-want) > 1e-9 {
		t.Fatalf("TotalScore=%v, want %v", breakdown.TotalScore, want)
	}
}

func TestRecencyMultiplier(t *testing.T) {
	now := time.Now()
	promptID := uuid.New()

	if got := RecencyMultiplier(promptID, nil, now); got != 1.0 {
		t.Fatalf("RecencyMultiplier with no history=%v, want 1.0", got)
	}

	history := []*types.Completion{
		{ID: uuid.New(), PromptID: promptID, CompletedAt: now.Add(-61 * 24 * time.Hour)},
	}
	if got := RecencyMultiplier(promptID, history, now); got != 0.5 {
		t.Fatalf("RecencyMultiplier 61 days out=%v, want clamped 0.5", got)
	}

	history = []*types.Completion{
		{ID: uuid.New(), PromptID: promptID, CompletedAt: now.Add(-10 * 24 * time.Hour)},
	}
	got := RecencyMultiplier(promptID, history, now)
	if math.Abs(got-(1.0-10.0/30.0)) > 1e-9 {
		t.Fatalf("RecencyMultiplier 10 days out=%v, want %v", got, 1.0-10.0/30.0)
	}
}

func TestLoadScoreWeightsFallsBackToDefaults(t *testing.T) {
	w := LoadScoreWeights("", nil)
	if w != DefaultScoreWeights() {
		t.Fatalf("empty path should yield defaults, got %+v", w)
	}
	w = LoadScoreWeights("/nonexistent/weights.yaml", nil)
	if w != DefaultScoreWeights() {
		t.Fatalf("unreadable path should yield defaults, got %+v", w)
	}
}
