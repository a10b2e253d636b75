package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearthlabs/hearth-backend/internal/platform/logger"
	"github.com/hearthlabs/hearth-backend/internal/types"
)

type CompletionRepo interface {
	GetRecentByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID, limit int) ([]*types.Completion, error)
	SecondsInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (int64, error)
	DistinctCompletionDates(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]string, error)
}

type completionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompletionRepo(db *gorm.DB, baseLog *logger.Logger) CompletionRepo {
	repoLog := baseLog.With("repo", "CompletionRepo")
	return &completionRepo{db: db, log: repoLog}
}

// GetRecentByChildID returns the child's most recent completions, newest
// first, with the prompt's category joined in.
func (r *completionRepo) GetRecentByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID, limit int) ([]*types.Completion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Completion
	if childID == uuid.Nil {
		return results, nil
	}
	if limit <= 0 {
		limit = 100
	}

	if err := transaction.WithContext(ctx).
		Table("completion").
		Select("completion.*, prompt.category AS category").
		Joins("LEFT JOIN prompt ON prompt.id = completion.prompt_id").
		Where("completion.child_id = ?", childID).
		Order("completion.completed_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// SecondsInWindow sums completion durations for the user since the given
// time; completions without a recorded duration count as 300 seconds.
func (r *completionRepo) SecondsInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil {
		return 0, nil
	}

	var total int64
	if err := transaction.WithContext(ctx).
		Table("completion").
		Select("COALESCE(SUM(COALESCE(duration_seconds, 300)), 0)").
		Where("user_id = ? AND completed_at >= ?", userID, since).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *completionRepo) DistinctCompletionDates(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []string
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Table("completion").
		Distinct("completion_date").
		Where("user_id = ?", userID).
		Order("completion_date DESC").
		Pluck("completion_date", &results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
