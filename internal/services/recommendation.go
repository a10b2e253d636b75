package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/hearthlabs/hearth-backend/internal/platform/logger"
	"github.com/hearthlabs/hearth-backend/internal/repos"
	"github.com/hearthlabs/hearth-backend/internal/types"
)

// Generation strategies, mutually exclusive per call.
const (
	StrategyNewUser         = "new_user"
	StrategyStandard        = "standard"
	StrategyForcedDiversity = "forced_diversity"
	StrategyGreatestHits    = "greatest_hits"
	StrategyFallback        = "fallback"
)

const (
	DefaultRecommendationLimit = 5

	// Children with fewer completions than this get starter activities.
	newUserCompletionThreshold = 3

	// Prompts completed within this window are excluded from the standard
	// candidate pool.
	recencyExclusionWindow = 14 * 24 * time.Hour

	// History fetch cap; older completions stop informing the ranking.
	historyFetchLimit = 100

	// Completions longer than this mark a prompt as a past hit.
	greatestHitsMinDurationSeconds = 300

	slowCallThreshold = 500 * time.Millisecond
)

var (
	ErrChildNotFound     = errors.New("child not found")
	ErrFallbackExhausted = errors.New("fallback could not find child")
)

type RecommendationRequest struct {
	UserID    uuid.UUID
	ChildID   uuid.UUID
	FaithMode bool
	Limit     int
}

type RecommendationMeta struct {
	TotalCompletions int            `json:"total_completions"`
	CategoryCounts   map[string]int `json:"category_counts"`
	GeneratedAt      string         `json:"generated_at"`
	CacheKey         string         `json:"cache_key"`
	Strategy         string         `json:"strategy"`
}

type RecommendationResult struct {
	ChildID uuid.UUID          `json:"child_id"`
	Prompts []ScoredPrompt     `json:"prompts"`
	Meta    RecommendationMeta `json:"meta"`
}

// CacheKey is the contract with the external caching layer; version it when
// the result shape changes.
func CacheKey(userID, childID uuid.UUID, faithMode bool) string {
	return fmt.Sprintf("recommendations:%s:%s:%t:v1", userID, childID, faithMode)
}

type RecommendationService interface {
	GetRecommendations(ctx context.Context, req RecommendationRequest) (*RecommendationResult, error)
}

type recommendationService struct {
	db          *gorm.DB
	log         *logger.Logger
	children    repos.ChildRepo
	prompts     repos.PromptRepo
	completions repos.CompletionRepo
	favorites   repos.FavoriteRepo
	telemetry   TelemetrySink
	weights     ScoreWeights
	now         func() time.Time
}

func NewRecommendationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	children repos.ChildRepo,
	prompts repos.PromptRepo,
	completions repos.CompletionRepo,
	favorites repos.FavoriteRepo,
	telemetry TelemetrySink,
	weights ScoreWeights,
) RecommendationService {
	return &recommendationService{
		db:          db,
		log:         baseLog.With("service", "RecommendationService"),
		children:    children,
		prompts:     prompts,
		completions: completions,
		favorites:   favorites,
		telemetry:   telemetry,
		weights:     weights,
		now:         time.Now,
	}
}

// GetRecommendations always returns a result: any failure during strategy
// resolution degrades to the fallback strategy. The only error that reaches
// the caller is ErrFallbackExhausted, when even the fallback cannot find
// the child.
func (s *recommendationService) GetRecommendations(ctx context.Context, req RecommendationRequest) (*RecommendationResult, error) {
	start := s.now()
	if req.Limit <= 0 {
		req.Limit = DefaultRecommendationLimit
	}

	tracer := otel.Tracer("recommendation")
	ctx, span := tracer.Start(ctx, "GetRecommendations")
	span.SetAttributes(
		attribute.Bool("faith_mode", req.FaithMode),
		attribute.Int("limit", req.Limit),
	)
	defer span.End()

	s.telemetry.Breadcrumb("recommendation", "generation started", map[string]interface{}{
		"faith_mode": req.FaithMode,
		"limit":      req.Limit,
	})

	result, err := s.generate(ctx, req)
	if err != nil {
		s.telemetry.Exception(err, map[string]string{
			"component": "recommendation_engine",
			"child_id":  req.ChildID.String(),
		}, map[string]interface{}{
			"duration_ms": s.now().Sub(start).Milliseconds(),
		})
		result, err = s.fallback(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	elapsed := s.now().Sub(start)
	if elapsed > slowCallThreshold {
		s.telemetry.Message("warning", "slow recommendation generation", map[string]string{
			"strategy":    result.Meta.Strategy,
			"duration_ms": fmt.Sprintf("%d", elapsed.Milliseconds()),
		})
	}
	s.log.Info("recommendations generated",
		"child_id", req.ChildID.String(),
		"strategy", result.Meta.Strategy,
		"count", len(result.Prompts),
		"duration_ms", elapsed.Milliseconds(),
	)
	return result, nil
}

func (s *recommendationService) generate(ctx context.Context, req RecommendationRequest) (*RecommendationResult, error) {
	now := s.now()

	// The four reads are independent; issue them together.
	var (
		child     *types.Child
		history   []*types.Completion
		catalog   []*types.Prompt
		favorites []*types.Favorite
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.children.GetByID(gctx, nil, req.ChildID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrChildNotFound, req.ChildID)
			}
			return fmt.Errorf("fetch child: %w", err)
		}
		child = c
		return nil
	})
	g.Go(func() error {
		h, err := s.completions.GetRecentByChildID(gctx, nil, req.ChildID, historyFetchLimit)
		if err != nil {
			return fmt.Errorf("fetch completions: %w", err)
		}
		history = h
		return nil
	})
	g.Go(func() error {
		p, err := s.prompts.GetAll(gctx, nil)
		if err != nil {
			return fmt.Errorf("fetch prompt catalog: %w", err)
		}
		catalog = p
		return nil
	})
	g.Go(func() error {
		f, err := s.favorites.GetByUserID(gctx, nil, req.UserID)
		if err != nil {
			return fmt.Errorf("fetch favorites: %w", err)
		}
		favorites = f
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	favoriteIDs := make(map[uuid.UUID]bool, len(favorites))
	for _, f := range favorites {
		favoriteIDs[f.PromptID] = true
	}

	dist := BuildCategoryDistribution(history, now)

	if dist.TotalCompletions < newUserCompletionThreshold {
		return s.newUserStrategy(child, catalog, dist, req, now), nil
	}

	eligible := s.eligibleCandidates(child, catalog, history, req.FaithMode, now)
	if len(eligible) == 0 {
		return s.greatestHitsStrategy(catalog, history, favorites, dist, req, now), nil
	}

	scored := make([]ScoredPrompt, 0, len(eligible))
	for _, prompt := range eligible {
		breakdown := ScorePrompt(prompt, child, history, favoriteIDs, dist, s.weights, now)
		multiplier := RecencyMultiplier(prompt.ID, history, now)
		scored = append(scored, ScoredPrompt{
			Prompt:  prompt,
			Score:   breakdown.TotalScore * multiplier,
			Reasons: breakdown.Reasons,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Prompt.ID.String() < scored[j].Prompt.ID.String()
	})

	if dominant := dist.DominantCategory(); dominant != "" {
		var diverse []ScoredPrompt
		for _, sp := range scored {
			if sp.Prompt.Category != dominant {
				diverse = append(diverse, sp)
			}
		}
		if len(diverse) >= minSelectionTarget {
			selected := SelectDiverse(diverse, req.Limit, req.ChildID.String(), now)
			return s.buildResult(req, StrategyForcedDiversity, selected, dist, now), nil
		}
	}

	selected := SelectDiverse(scored, req.Limit, req.ChildID.String(), now)
	return s.buildResult(req, StrategyStandard, selected, dist, now), nil
}

// newUserStrategy round-robins one starter prompt per category, rotated by
// the same date+child offset the selector uses so siblings get different
// starters on the same day.
func (s *recommendationService) newUserStrategy(child *types.Child, catalog []*types.Prompt, dist CategoryDistribution, req RecommendationRequest, now time.Time) *RecommendationResult {
	bracket := child.AgeBracket(now)
	var ageAppropriate []*types.Prompt
	for _, p := range catalog {
		if p.MatchesAgeBracket(bracket) {
			ageAppropriate = append(ageAppropriate, p)
		}
	}
	candidates := applyFaithMode(ageAppropriate, req.FaithMode)

	// Short activities are the easiest on-ramp.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].EstimatedMinutes <= 5 && candidates[j].EstimatedMinutes > 5
	})

	byCategory := map[string][]*types.Prompt{}
	var categories []string
	for _, p := range candidates {
		if _, seen := byCategory[p.Category]; !seen {
			categories = append(categories, p.Category)
		}
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	if len(categories) > 0 {
		offset := rotationOffset(req.ChildID.String(), now, len(categories))
		categories = append(categories[offset:], categories[:offset]...)
	}

	var picks []*types.Prompt
	for round := 0; len(picks) < req.Limit; round++ {
		progressed := false
		for _, category := range categories {
			if len(picks) >= req.Limit {
				break
			}
			pool := byCategory[category]
			if round >= len(pool) {
				continue
			}
			picks = append(picks, pool[round])
			progressed = true
		}
		if !progressed {
			break
		}
	}

	scored := make([]ScoredPrompt, 0, len(picks))
	for _, p := range picks {
		scored = append(scored, ScoredPrompt{
			Prompt: p,
			Score:  75,
			Reasons: []Reason{{
				Type:    ReasonStarter,
				Message: "A great way to start building your connection habit",
				Weight:  75,
			}},
		})
	}
	return s.buildResult(req, StrategyNewUser, scored, dist, now)
}

// eligibleCandidates applies the standard-entry filters: age bracket,
// 14-day recency exclusion, and faith mode.
func (s *recommendationService) eligibleCandidates(child *types.Child, catalog []*types.Prompt, history []*types.Completion, faithMode bool, now time.Time) []*types.Prompt {
	bracket := child.AgeBracket(now)
	recentlyCompleted := map[uuid.UUID]bool{}
	for _, c := range history {
		if now.Sub(c.CompletedAt) < recencyExclusionWindow {
			recentlyCompleted[c.PromptID] = true
		}
	}

	var eligible []*types.Prompt
	for _, p := range catalog {
		if !p.MatchesAgeBracket(bracket) {
			continue
		}
		if recentlyCompleted[p.ID] {
			continue
		}
		eligible = append(eligible, p)
	}
	return applyFaithMode(eligible, faithMode)
}

// applyFaithMode shapes the pool around faith tags. Faith mode on keeps the
// whole pool and stably sorts faith-tagged prompts first; faith mode off
// excludes faith-tagged prompts, falling back to the unfiltered pool if the
// exclusion would empty it.
func applyFaithMode(prompts []*types.Prompt, faithMode bool) []*types.Prompt {
	if faithMode {
		kept := make([]*types.Prompt, len(prompts))
		copy(kept, prompts)
		sort.SliceStable(kept, func(i, j int) bool {
			return kept[i].IsFaithTagged() && !kept[j].IsFaithTagged()
		})
		return kept
	}

	var kept []*types.Prompt
	for _, p := range prompts {
		if !p.IsFaithTagged() {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		kept = prompts
	}
	return kept
}

// greatestHitsStrategy resurfaces proven prompts when the standard filters
// empty the pool: favorites plus anything the child sank real time or a
// reflection into.
func (s *recommendationService) greatestHitsStrategy(catalog []*types.Prompt, history []*types.Completion, favorites []*types.Favorite, dist CategoryDistribution, req RecommendationRequest, now time.Time) *RecommendationResult {
	byID := make(map[uuid.UUID]*types.Prompt, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	seen := map[uuid.UUID]bool{}
	var hits []*types.Prompt
	appendHit := func(id uuid.UUID) {
		if seen[id] {
			return
		}
		if p, ok := byID[id]; ok {
			seen[id] = true
			hits = append(hits, p)
		}
	}
	for _, f := range favorites {
		appendHit(f.PromptID)
	}
	for _, c := range history {
		d, hasDuration := c.Duration()
		if (hasDuration && d > greatestHitsMinDurationSeconds) || c.HasReflectionNote() {
			appendHit(c.PromptID)
		}
	}
	if len(hits) > req.Limit {
		hits = hits[:req.Limit]
	}

	scored := make([]ScoredPrompt, 0, len(hits))
	for _, p := range hits {
		scored = append(scored, ScoredPrompt{
			Prompt: p,
			Score:  80,
			Reasons: []Reason{{
				Type:    ReasonPopular,
				Message: "An activity you've loved before",
				Weight:  80,
			}},
		})
	}
	return s.buildResult(req, StrategyGreatestHits, scored, dist, now)
}

// fallback is the terminal error state: a minimal re-fetch with no
// personalization. A missing child here has nowhere left to degrade to.
func (s *recommendationService) fallback(ctx context.Context, req RecommendationRequest) (*RecommendationResult, error) {
	now := s.now()

	child, err := s.children.GetByID(ctx, nil, req.ChildID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrFallbackExhausted, req.ChildID)
		}
		return nil, fmt.Errorf("%w: %v", ErrFallbackExhausted, err)
	}

	prompts, err := s.prompts.GetByAgeBracket(ctx, nil, child.AgeBracket(now), req.Limit)
	if err != nil {
		s.log.Warn("fallback prompt query failed, returning empty list", "error", err)
		prompts = nil
	}

	scored := make([]ScoredPrompt, 0, len(prompts))
	for _, p := range prompts {
		scored = append(scored, ScoredPrompt{
			Prompt: p,
			Score:  50,
			Reasons: []Reason{{
				Type:    ReasonPopular,
				Message: "A popular activity for this age",
				Weight:  50,
			}},
		})
	}
	return s.buildResult(req, StrategyFallback, scored, CategoryDistribution{}, now), nil
}

func (s *recommendationService) buildResult(req RecommendationRequest, strategy string, prompts []ScoredPrompt, dist CategoryDistribution, now time.Time) *RecommendationResult {
	if prompts == nil {
		prompts = []ScoredPrompt{}
	}
	return &RecommendationResult{
		ChildID: req.ChildID,
		Prompts: prompts,
		Meta: RecommendationMeta{
			TotalCompletions: dist.TotalCompletions,
			CategoryCounts:   dist.CategoryCounts(),
			GeneratedAt:      now.UTC().Format(time.RFC3339),
			CacheKey:         CacheKey(req.UserID, req.ChildID, req.FaithMode),
			Strategy:         strategy,
		},
	}
}
