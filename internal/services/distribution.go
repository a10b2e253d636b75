package services

import (
	"sort"
	"time"

	"github.com/hearthlabs/hearth-backend/internal/types"
)

const (
	// Categories under this share of the history are underrepresented,
	// but only once the history is large enough to be meaningful.
	underrepresentedShare          = 0.10
	minCompletionsForUnderrepCheck = 10

	// Categories over this share are overrepresented.
	overrepresentedShare = 0.30

	// A category untouched for this long is neglected.
	neglectedAfter = 14 * 24 * time.Hour

	// Completions whose prompt reference is gone fall into this bucket.
	uncategorizedLabel = "uncategorized"
)

type CategoryStats struct {
	Category           string     `json:"category"`
	Count              int        `json:"count"`
	Percentage         float64    `json:"percentage"`
	LastCompleted      *time.Time `json:"last_completed,omitempty"`
	AvgDurationSeconds float64    `json:"avg_duration_seconds"`
	HasReflectionNotes bool       `json:"has_reflection_notes"`
}

type CategoryDistribution struct {
	Stats            []CategoryStats `json:"stats"`
	TotalCompletions int             `json:"total_completions"`
	Underrepresented map[string]bool `json:"underrepresented"`
	Overrepresented  map[string]bool `json:"overrepresented"`
	Neglected        map[string]bool `json:"neglected"`
}

// BuildCategoryDistribution groups a child's completion history by prompt
// category and derives the representation sets the scorer keys off.
func BuildCategoryDistribution(completions []*types.Completion, now time.Time) CategoryDistribution {
	dist := CategoryDistribution{
		Stats:            []CategoryStats{},
		Underrepresented: map[string]bool{},
		Overrepresented:  map[string]bool{},
		Neglected:        map[string]bool{},
	}
	if len(completions) == 0 {
		return dist
	}

	type bucket struct {
		count         int
		last          time.Time
		durationSum   int
		durationCount int
		hasNotes      bool
	}
	buckets := map[string]*bucket{}
	for _, c := range completions {
		category := c.Category
		if category == "" {
			category = uncategorizedLabel
		}
		b := buckets[category]
		if b == nil {
			b = &bucket{}
			buckets[category] = b
		}
		b.count++
		if c.CompletedAt.After(b.last) {
			b.last = c.CompletedAt
		}
		if d, ok := c.Duration(); ok {
			b.durationSum += d
			b.durationCount++
		}
		if c.HasReflectionNote() {
			b.hasNotes = true
		}
	}

	total := len(completions)
	dist.TotalCompletions = total
	for category, b := range buckets {
		stats := CategoryStats{
			Category:           category,
			Count:              b.count,
			Percentage:         float64(b.count) / float64(total),
			HasReflectionNotes: b.hasNotes,
		}
		if !b.last.IsZero() {
			last := b.last
			stats.LastCompleted = &last
		}
		if b.durationCount > 0 {
			stats.AvgDurationSeconds = float64(b.durationSum) / float64(b.durationCount)
		}
		dist.Stats = append(dist.Stats, stats)
	}
	sort.Slice(dist.Stats, func(i, j int) bool {
		if dist.Stats[i].Count != dist.Stats[j].Count {
			return dist.Stats[i].Count > dist.Stats[j].Count
		}
		return dist.Stats[i].Category < dist.Stats[j].Category
	})

	for _, stats := range dist.Stats {
		if total >= minCompletionsForUnderrepCheck && stats.Percentage < underrepresentedShare {
			dist.Underrepresented[stats.Category] = true
		}
		if stats.Percentage > overrepresentedShare {
			dist.Overrepresented[stats.Category] = true
		}
		if stats.LastCompleted != nil && now.Sub(*stats.LastCompleted) > neglectedAfter {
			dist.Neglected[stats.Category] = true
		}
	}
	return dist
}

// DominantCategory returns the single most-completed category when it
// exceeds half of the history, or "" when no category dominates.
func (d CategoryDistribution) DominantCategory() string {
	if d.TotalCompletions == 0 || len(d.Stats) == 0 {
		return ""
	}
	top := d.Stats[0]
	if float64(top.Count) > 0.5*float64(d.TotalCompletions) {
		return top.Category
	}
	return ""
}

func (d CategoryDistribution) CategoryCounts() map[string]int {
	counts := make(map[string]int, len(d.Stats))
	for _, s := range d.Stats {
		counts[s.Category] = s.Count
	}
	return counts
}
