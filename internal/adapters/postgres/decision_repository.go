package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/domain"
	"gorm.io/gorm"
)

type decisionRepository struct {
	db *gorm.DB
}

func (r *decisionRepository) Append(ctx context.Context, decision domain.Decision) error {
	rec := moderationDecisionModel{
		DecisionID: decision.DecisionID,
		RecordID:   decision.RecordID,
		TypeName:   decision.TypeName,
		Decision:   string(decision.Decision),
		Moderator:  decision.Moderator,
		Reason:     decision.Reason,
		DecidedAt:  decision.DecidedAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *decisionRepository) ListByRecord(ctx context.Context, typeName string, recordID uuid.UUID, limit int) ([]domain.Decision, error) {
	var recs []moderationDecisionModel
	if err := r.db.WithContext(ctx).
		Where("type_name = ? AND record_id = ?", typeName, recordID).
		Order("decided_at DESC").
		Limit(limit).
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Decision, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.Decision{
			DecisionID: rec.DecisionID,
			RecordID:   rec.RecordID,
			TypeName:   rec.TypeName,
			Decision:   domain.Status(rec.Decision),
			Moderator:  rec.Moderator,
			Reason:     rec.Reason,
			DecidedAt:  rec.DecidedAt,
		})
	}
	return out, nil
}
