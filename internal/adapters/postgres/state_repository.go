package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/domain"
	"gorm.io/gorm"
)

type stateRepository struct {
	db *gorm.DB
}

func (r *stateRepository) GetByRecord(ctx context.Context, typeName string, recordID uuid.UUID) (domain.ModerationState, error) {
	var rec moderationStateModel
	if err := r.db.WithContext(ctx).Where("type_name = ? AND record_id = ?", typeName, recordID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ModerationState{}, domain.ErrNotFound
		}
		return domain.ModerationState{}, err
	}
	return toDomainState(rec)
}

func (r *stateRepository) ListPending(ctx context.Context, limit, offset int) ([]domain.ModerationState, error) {
	var recs []moderationStateModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.StatusPending)).
		Order("updated_at DESC").
		Limit(limit).Offset(offset).
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ModerationState, 0, len(recs))
	for _, rec := range recs {
		state, err := toDomainState(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, state)
	}
	return out, nil
}

func (r *stateRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&moderationStateModel{}).
		Where("status = ?", string(domain.StatusPending)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
