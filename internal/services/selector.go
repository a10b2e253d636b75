package services

import (
	"time"
)

const (
	// Rotation only shuffles the highest-scoring candidates so lower-ranked
	// prompts never leapfrog the top tier.
	rotationTierSize = 10

	// At most this many selections may share a category or a primary tag.
	maxPerCategory   = 2
	maxPerPrimaryTag = 2

	// Below this count the selector relaxes its diversity caps.
	minSelectionTarget = 3
)

// SelectDiverse picks up to limit prompts from a score-sorted candidate
// list. The top tier is rotated by a date+child offset so the same child
// sees a stable list for a calendar day but a fresh one tomorrow, and
// siblings rotate differently on the same day. A greedy pass then caps
// category and primary-tag repeats.
func SelectDiverse(candidates []ScoredPrompt, limit int, childID string, now time.Time) []ScoredPrompt {
	if limit <= 0 || len(candidates) == 0 {
		return []ScoredPrompt{}
	}

	tierSize := rotationTierSize
	if len(candidates) < tierSize {
		tierSize = len(candidates)
	}
	offset := rotationOffset(childID, now, tierSize)

	rotated := make([]ScoredPrompt, 0, len(candidates))
	rotated = append(rotated, candidates[offset:tierSize]...)
	rotated = append(rotated, candidates[:offset]...)
	rotated = append(rotated, candidates[tierSize:]...)

	selected := make([]ScoredPrompt, 0, limit)
	picked := map[string]bool{}
	categoryCounts := map[string]int{}
	tagCounts := map[string]int{}
	for _, candidate := range rotated {
		if len(selected) >= limit {
			break
		}
		category := candidate.Prompt.Category
		tag := candidate.Prompt.PrimaryTag()
		if categoryCounts[category] >= maxPerCategory || tagCounts[tag] >= maxPerPrimaryTag {
			continue
		}
		selected = append(selected, candidate)
		picked[candidate.Prompt.ID.String()] = true
		categoryCounts[category]++
		tagCounts[tag]++
	}

	// If diversity caps starved the list, backfill by score order without
	// constraints.
	if len(selected) < minSelectionTarget && len(candidates) >= minSelectionTarget {
		for _, candidate := range candidates {
			if len(selected) >= limit {
				break
			}
			if picked[candidate.Prompt.ID.String()] {
				continue
			}
			selected = append(selected, candidate)
			picked[candidate.Prompt.ID.String()] = true
		}
	}
	return selected
}

// rotationOffset derives a deterministic offset from the calendar date and
// the child id, so repeated calls on the same day agree and external caches
// stay coherent.
func rotationOffset(childID string, now time.Time, size int) int {
	if size <= 0 {
		return 0
	}
	dateNumber := uint32(now.Year()*10000 + int(now.Month())*100 + now.Day())
	return int((dateNumber + hashString32(childID)) % uint32(size))
}

// hashString32 is a 31-multiplier polynomial hash with 32-bit wraparound,
// kept fixed-width so rotation is reproducible across processes.
func hashString32(s string) uint32 {
	var h uint32
	for _, ch := range []byte(s) {
		h = h*31 + uint32(ch)
	}
	return h
}
