package services

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/hearthlabs/hearth-backend/internal/platform/logger"
	"github.com/hearthlabs/hearth-backend/internal/types"
)

type ReasonType string

const (
	ReasonCategoryBalance ReasonType = "category_balance"
	ReasonEngagement      ReasonType = "engagement"
	ReasonChallengeMatch  ReasonType = "challenge_match"
	ReasonInterestMatch   ReasonType = "interest_match"
	ReasonPopular         ReasonType = "popular"
	ReasonStarter         ReasonType = "starter"
)

type Reason struct {
	Type    ReasonType `json:"type"`
	Message string     `json:"message"`
	Weight  float64    `json:"weight"`
}

type ScoreWeights struct {
	Category   float64 `yaml:"category"`
	Engagement float64 `yaml:"engagement"`
	Filter     float64 `yaml:"filter"`
}

func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Category: 0.70, Engagement: 0.20, Filter: 0.10}
}

// LoadScoreWeights reads weight overrides from an optional YAML file. The
// three weights must be non-negative and sum to 1.0; anything else falls
// back to the defaults.
func LoadScoreWeights(path string, log *logger.Logger) ScoreWeights {
	defaults := DefaultScoreWeights()
	if strings.TrimSpace(path) == "" {
		return defaults
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if log != nil {
			log.Warn("Could not read scoring weights file, using defaults", "path", path, "error", err)
		}
		return defaults
	}
	var w ScoreWeights
	if err := yaml.Unmarshal(raw, &w); err != nil {
		if log != nil {
			log.Warn("Could not parse scoring weights file, using defaults", "path", path, "error", err)
		}
		return defaults
	}
	if w.Category < 0 || w.Engagement < 0 || w.Filter < 0 {
		if log != nil {
			log.Warn("Scoring weights must be non-negative, using defaults", "path", path)
		}
		return defaults
	}
	if math.Abs(w.Category+w.Engagement+w.Filter-1.0) > 1e-6 {
		if log != nil {
			log.Warn("Scoring weights must sum to 1.0, using defaults", "path", path)
		}
		return defaults
	}
	if log != nil {
		log.Info("Loaded scoring weights", "category", w.Category, "engagement", w.Engagement, "filter", w.Filter)
	}
	return w
}

type ScoreBreakdown struct {
	CategoryScore   float64  `json:"category_score"`
	EngagementScore float64  `json:"engagement_score"`
	FilterScore     float64  `json:"filter_score"`
	TotalScore      float64  `json:"total_score"`
	Reasons         []Reason `json:"reasons"`
}

type ScoredPrompt struct {
	Prompt  *types.Prompt `json:"prompt"`
	Score   float64       `json:"score"`
	Reasons []Reason      `json:"reasons"`
}

// ScorePrompt scores one candidate against the child's profile and history
// using three weighted sub-scores. The recency multiplier is applied by the
// caller, after the weighted total.
func ScorePrompt(prompt *types.Prompt, child *types.Child, history []*types.Completion, favorites map[uuid.UUID]bool, dist CategoryDistribution, weights ScoreWeights, now time.Time) ScoreBreakdown {
	var reasons []Reason

	categoryScore, categoryReasons := scoreCategory(prompt, dist)
	reasons = append(reasons, categoryReasons...)

	engagementScore, engagementReasons := scoreEngagement(prompt, history, favorites)
	reasons = append(reasons, engagementReasons...)

	filterScore, filterReasons := scoreFilters(prompt, child, now)
	reasons = append(reasons, filterReasons...)

	total := categoryScore*weights.Category + engagementScore*weights.Engagement + filterScore*weights.Filter
	return ScoreBreakdown{
		CategoryScore:   categoryScore,
		EngagementScore: engagementScore,
		FilterScore:     filterScore,
		TotalScore:      total,
		Reasons:         reasons,
	}
}

// balanceBoost resolves a category's representation status to a multiplier.
// Underrepresented wins over neglected when a category is in both sets.
func balanceBoost(dist CategoryDistribution, category string) float64 {
	switch {
	case dist.Underrepresented[category]:
		return 1.5
	case dist.Neglected[category]:
		return 1.3
	case dist.Overrepresented[category]:
		return 0.7
	default:
		return 1.0
	}
}

func scoreCategory(prompt *types.Prompt, dist CategoryDistribution) (float64, []Reason) {
	boost := balanceBoost(dist, prompt.Category)
	score := clampScore(50 * boost)

	// The overrepresentation penalty is silent; only boosts get explained.
	var reasons []Reason
	switch {
	case boost == 1.5:
		reasons = append(reasons, Reason{
			Type:    ReasonCategoryBalance,
			Message: fmt.Sprintf("You haven't explored %s activities much yet", prompt.Category),
			Weight:  score,
		})
	case boost == 1.3:
		reasons = append(reasons, Reason{
			Type:    ReasonCategoryBalance,
			Message: fmt.Sprintf("It's been a while since your last %s activity", prompt.Category),
			Weight:  score,
		})
	}
	return score, reasons
}

func scoreEngagement(prompt *types.Prompt, history []*types.Completion, favorites map[uuid.UUID]bool) (float64, []Reason) {
	var promptCompletions []*types.Completion
	for _, c := range history {
		if c.PromptID == prompt.ID {
			promptCompletions = append(promptCompletions, c)
		}
	}
	if len(promptCompletions) == 0 {
		return 50, nil
	}

	dur := durationBand(prompt, promptCompletions)
	refl := reflectionBand(promptCompletions)
	fav := 50.0
	if favorites[prompt.ID] {
		fav = 100
	}

	score := dur*0.4 + refl*0.4 + fav*0.2

	var reasons []Reason
	if dur > 50 {
		reasons = append(reasons, Reason{
			Type:    ReasonEngagement,
			Message: "You tend to spend extra time on this activity",
			Weight:  dur,
		})
	}
	if refl > 50 {
		reasons = append(reasons, Reason{
			Type:    ReasonEngagement,
			Message: "You often write reflections after this activity",
			Weight:  refl,
		})
	}
	if fav > 50 {
		reasons = append(reasons, Reason{
			Type:    ReasonEngagement,
			Message: "One of your favorites",
			Weight:  fav,
		})
	}
	return score, reasons
}

func durationBand(prompt *types.Prompt, completions []*types.Completion) float64 {
	sum, count := 0, 0
	for _, c := range completions {
		if d, ok := c.Duration(); ok {
			sum += d
			count++
		}
	}
	// No recorded durations gives no signal either way.
	if count == 0 || prompt.EstimatedMinutes <= 0 {
		return 50
	}
	mean := float64(sum) / float64(count)
	ratio := mean / float64(prompt.EstimatedMinutes*60)
	switch {
	case ratio >= 1.5:
		return 100
	case ratio >= 1.0:
		return 75
	case ratio >= 0.75:
		return 50
	default:
		return 25
	}
}

func reflectionBand(completions []*types.Completion) float64 {
	noted := 0
	for _, c := range completions {
		if c.HasReflectionNote() {
			noted++
		}
	}
	if noted == 0 {
		return 50
	}
	share := float64(noted) / float64(len(completions))
	switch {
	case share >= 0.75:
		return 100
	case share >= 0.50:
		return 85
	case share >= 0.25:
		return 70
	default:
		return 60
	}
}

func scoreFilters(prompt *types.Prompt, child *types.Child, now time.Time) (float64, []Reason) {
	ageMatch := 0.0
	if prompt.MatchesAgeBracket(child.AgeBracket(now)) {
		ageMatch = 100
	}

	tags := prompt.TagList()
	challengeBand, challengeMatches := matchBand(child.ChallengeList(), tags)
	interestBand, interestMatches := matchBand(child.InterestList(), tags)

	var reasons []Reason
	for _, m := range challengeMatches {
		reasons = append(reasons, Reason{
			Type:    ReasonChallengeMatch,
			Message: fmt.Sprintf("Supports working through %s", m),
			Weight:  challengeBand,
		})
	}
	for _, m := range interestMatches {
		reasons = append(reasons, Reason{
			Type:    ReasonInterestMatch,
			Message: fmt.Sprintf("Matches %s's interest in %s", child.Name, m),
			Weight:  interestBand,
		})
	}

	score := ageMatch*0.5 + challengeBand*0.3 + interestBand*0.2
	return score, reasons
}

// matchBand counts case-insensitive substring matches between the child's
// list and the prompt tags and maps the count to a band.
func matchBand(items []string, tags []string) (float64, []string) {
	var matched []string
	for _, item := range items {
		li := strings.ToLower(strings.TrimSpace(item))
		if li == "" {
			continue
		}
		for _, tag := range tags {
			lt := strings.ToLower(strings.TrimSpace(tag))
			if lt == "" {
				continue
			}
			if strings.Contains(lt, li) || strings.Contains(li, lt) {
				matched = append(matched, item)
				break
			}
		}
	}
	switch {
	case len(matched) >= 2:
		return 100, matched
	case len(matched) == 1:
		return 75, matched
	default:
		return 50, nil
	}
}

// RecencyMultiplier dampens prompts completed recently: full weight at 30+
// day-old history fades linearly to a 0.5 floor, 1.0 when never completed.
func RecencyMultiplier(promptID uuid.UUID, history []*types.Completion, now time.Time) float64 {
	var mostRecent time.Time
	for _, c := range history {
		if c.PromptID == promptID && c.CompletedAt.After(mostRecent) {
			mostRecent = c.CompletedAt
		}
	}
	if mostRecent.IsZero() {
		return 1.0
	}
	days := now.Sub(mostRecent).Hours() / 24
	return math.Max(0.5, 1-days/30)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
