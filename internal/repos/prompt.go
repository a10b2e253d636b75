package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/hearthlabs/hearth-backend/internal/platform/logger"
	"github.com/hearthlabs/hearth-backend/internal/types"
)

type PromptRepo interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Prompt, error)
	GetByAgeBracket(ctx context.Context, tx *gorm.DB, bracket string, limit int) ([]*types.Prompt, error)
}

type promptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromptRepo(db *gorm.DB, baseLog *logger.Logger) PromptRepo {
	repoLog := baseLog.With("repo", "PromptRepo")
	return &promptRepo{db: db, log: repoLog}
}

func (r *promptRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Prompt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Prompt
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByAgeBracket filters the catalog in memory: age categories live in a
// JSON column and the catalog stays small enough that a portable scan beats
// a postgres-only JSON containment query.
func (r *promptRepo) GetByAgeBracket(ctx context.Context, tx *gorm.DB, bracket string, limit int) ([]*types.Prompt, error) {
	all, err := r.GetAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	var results []*types.Prompt
	for _, p := range all {
		if !p.MatchesAgeBracket(bracket) {
			continue
		}
		results = append(results, p)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}
