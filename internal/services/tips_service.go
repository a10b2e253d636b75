package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearthlabs/hearth-backend/internal/platform/logger"
	"github.com/hearthlabs/hearth-backend/internal/repos"
)

// Tips look at a short window of recent completions, not the full history.
const tipsRecentWindow = 20

type TipsService interface {
	GetTips(ctx context.Context, userID, childID uuid.UUID) ([]Tip, error)
}

type tipsService struct {
	db          *gorm.DB
	log         *logger.Logger
	children    repos.ChildRepo
	completions repos.CompletionRepo
	insights    InsightsService
	now         func() time.Time
}

func NewTipsService(db *gorm.DB, baseLog *logger.Logger, children repos.ChildRepo, completions repos.CompletionRepo, insights InsightsService) TipsService {
	return &tipsService{
		db:          db,
		log:         baseLog.With("service", "TipsService"),
		children:    children,
		completions: completions,
		insights:    insights,
		now:         time.Now,
	}
}

func (s *tipsService) GetTips(ctx context.Context, userID, childID uuid.UUID) ([]Tip, error) {
	child, err := s.children.GetByID(ctx, nil, childID)
	if err != nil {
		return nil, fmt.Errorf("fetch child: %w", err)
	}

	insights := s.insights.GetChildInsights(ctx, userID, childID)

	recent, err := s.completions.GetRecentByChildID(ctx, nil, childID, tipsRecentWindow)
	if err != nil {
		// Tips degrade fine without the recent window.
		s.log.Warn("could not fetch recent completions for tips", "child_id", childID.String(), "error", err)
		recent = nil
	}

	return GenerateTips(child, insights, recent, s.now()), nil
}
