package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/hearthlabs/hearth-backend/internal/platform/logger"
	"github.com/hearthlabs/hearth-backend/internal/repos"
	"github.com/hearthlabs/hearth-backend/internal/types"
)

// Completions logged without a duration count as five minutes.
const defaultCompletionSeconds = 300

type ChildInsights struct {
	TotalCompletions    int                `json:"total_completions"`
	CategoryCounts      map[string]int     `json:"category_counts"`
	CategoryPercentages map[string]float64 `json:"category_percentages"`
	FavoriteCategories  []string           `json:"favorite_categories"`
	LastCompletedAt     *time.Time         `json:"last_completed_at,omitempty"`
	ChildWeeklyMinutes  int                `json:"child_weekly_minutes"`
	ChildMonthlyMinutes int                `json:"child_monthly_minutes"`
	UserWeeklyMinutes   int                `json:"user_weekly_minutes"`
	UserMonthlyMinutes  int                `json:"user_monthly_minutes"`
	CurrentStreak       int                `json:"current_streak"`
}

func emptyChildInsights() *ChildInsights {
	return &ChildInsights{
		CategoryCounts:      map[string]int{},
		CategoryPercentages: map[string]float64{},
		FavoriteCategories:  []string{},
	}
}

type InsightsService interface {
	GetChildInsights(ctx context.Context, userID, childID uuid.UUID) *ChildInsights
}

type insightsService struct {
	db          *gorm.DB
	log         *logger.Logger
	completions repos.CompletionRepo
	telemetry   TelemetrySink
	now         func() time.Time
}

func NewInsightsService(db *gorm.DB, baseLog *logger.Logger, completions repos.CompletionRepo, telemetry TelemetrySink) InsightsService {
	return &insightsService{
		db:          db,
		log:         baseLog.With("service", "InsightsService"),
		completions: completions,
		telemetry:   telemetry,
		now:         time.Now,
	}
}

// GetChildInsights aggregates the child's completion history into display
// stats. It never fails outward: any read error is reported and an empty
// struct comes back.
func (s *insightsService) GetChildInsights(ctx context.Context, userID, childID uuid.UUID) *ChildInsights {
	now := s.now()
	weekAgo := now.Add(-7 * 24 * time.Hour)
	monthAgo := now.Add(-30 * 24 * time.Hour)

	var (
		weeklySeconds  int64
		monthlySeconds int64
		dates          []string
		history        []*types.Completion
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.completions.SecondsInWindow(gctx, nil, userID, weekAgo)
		weeklySeconds = v
		return err
	})
	g.Go(func() error {
		v, err := s.completions.SecondsInWindow(gctx, nil, userID, monthAgo)
		monthlySeconds = v
		return err
	})
	g.Go(func() error {
		v, err := s.completions.DistinctCompletionDates(gctx, nil, userID)
		dates = v
		return err
	})
	g.Go(func() error {
		v, err := s.completions.GetRecentByChildID(gctx, nil, childID, historyFetchLimit)
		history = v
		return err
	})
	if err := g.Wait(); err != nil {
		s.telemetry.Exception(err, map[string]string{
			"component": "insights_aggregator",
			"child_id":  childID.String(),
		}, nil)
		return emptyChildInsights()
	}

	insights := emptyChildInsights()
	insights.TotalCompletions = len(history)
	insights.UserWeeklyMinutes = int(weeklySeconds / 60)
	insights.UserMonthlyMinutes = int(monthlySeconds / 60)
	insights.CurrentStreak = streakFromDates(dates, now)

	var childWeeklySeconds, childMonthlySeconds int
	for _, c := range history {
		category := c.Category
		if category == "" {
			category = uncategorizedLabel
		}
		insights.CategoryCounts[category]++

		if insights.LastCompletedAt == nil || c.CompletedAt.After(*insights.LastCompletedAt) {
			t := c.CompletedAt
			insights.LastCompletedAt = &t
		}

		seconds := defaultCompletionSeconds
		if d, ok := c.Duration(); ok {
			seconds = d
		}
		if c.CompletedAt.After(weekAgo) {
			childWeeklySeconds += seconds
		}
		if c.CompletedAt.After(monthAgo) {
			childMonthlySeconds += seconds
		}
	}
	insights.ChildWeeklyMinutes = childWeeklySeconds / 60
	insights.ChildMonthlyMinutes = childMonthlySeconds / 60

	if insights.TotalCompletions > 0 {
		for category, count := range insights.CategoryCounts {
			insights.CategoryPercentages[category] = float64(count) / float64(insights.TotalCompletions)
		}
	}
	insights.FavoriteCategories = topCategories(insights.CategoryCounts, 3)
	return insights
}

// streakFromDates counts consecutive days with at least one completion,
// ending today or yesterday. Dates arrive sorted descending as YYYY-MM-DD.
func streakFromDates(dates []string, now time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	const layout = "2006-01-02"
	today := now.Format(layout)
	yesterday := now.AddDate(0, 0, -1).Format(layout)
	if dates[0] != today && dates[0] != yesterday {
		return 0
	}

	streak := 1
	prev, err := time.Parse(layout, dates[0])
	if err != nil {
		return 0
	}
	for _, raw := range dates[1:] {
		d, err := time.Parse(layout, raw)
		if err != nil {
			break
		}
		if prev.Sub(d) != 24*time.Hour {
			break
		}
		streak++
		prev = d
	}
	return streak
}

func topCategories(counts map[string]int, n int) []string {
	type entry struct {
		category string
		count    int
	}
	entries := make([]entry, 0, len(counts))
	for category, count := range counts {
		entries = append(entries, entry{category, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].category < entries[j].category
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.category)
	}
	return out
}
