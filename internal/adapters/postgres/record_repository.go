package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/domain"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/ports"
	"gorm.io/gorm"
)

type recordRepository struct {
	db *gorm.DB
}

func (r *recordRepository) Create(ctx context.Context, pair ports.RecordWithState) (ports.RecordWithState, error) {
	recModel, err := toRecordModel(pair.Record)
	if err != nil {
		return ports.RecordWithState{}, err
	}
	stateModel, err := toStateModel(pair.State)
	if err != nil {
		return ports.RecordWithState{}, err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recModel).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}
		if err := tx.Create(&stateModel).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return ports.RecordWithState{}, err
	}
	return pair, nil
}

func (r *recordRepository) Get(ctx context.Context, typeName string, recordID uuid.UUID) (domain.MonitoredRecord, error) {
	var rec monitoredRecordModel
	if err := r.db.WithContext(ctx).Where("type_name = ? AND record_id = ?", typeName, recordID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MonitoredRecord{}, domain.ErrNotFound
		}
		return domain.MonitoredRecord{}, err
	}
	return toDomainRecord(rec)
}

func (r *recordRepository) GetWithState(ctx context.Context, typeName string, recordID uuid.UUID) (ports.RecordWithState, error) {
	record, err := r.Get(ctx, typeName, recordID)
	if err != nil {
		return ports.RecordWithState{}, err
	}
	var stateRec moderationStateModel
	if err := r.db.WithContext(ctx).Where("type_name = ? AND record_id = ?", typeName, recordID).Take(&stateRec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.RecordWithState{}, domain.ErrNotFound
		}
		return ports.RecordWithState{}, err
	}
	state, err := toDomainState(stateRec)
	if err != nil {
		return ports.RecordWithState{}, err
	}
	return ports.RecordWithState{Record: record, State: state}, nil
}

func (r *recordRepository) List(ctx context.Context, params ports.ListRecordsParams) ([]domain.MonitoredRecord, error) {
	query := r.db.WithContext(ctx).Model(&monitoredRecordModel{}).
		Where("monitored_records.type_name = ?", params.TypeName)
	if !params.IncludeHidden {
		query = query.
			Joins("JOIN moderation_states ON moderation_states.record_id = monitored_records.record_id").
			Where("moderation_states.first_approved_at IS NOT NULL")
	}
	var recs []monitoredRecordModel
	if err := query.Order("monitored_records.created_at ASC").
		Limit(params.Limit).Offset(params.Offset).
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.MonitoredRecord, 0, len(recs))
	for _, rec := range recs {
		record, err := toDomainRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func (r *recordRepository) UpdateWithState(ctx context.Context, pair ports.RecordWithState) error {
	recModel, err := toRecordModel(pair.Record)
	if err != nil {
		return err
	}
	stateModel, err := toStateModel(pair.State)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&monitoredRecordModel{}).
			Where("record_id = ?", recModel.RecordID).
			Updates(map[string]any{
				"live_values": recModel.LiveValues,
				"updated_at":  recModel.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		res = tx.Model(&moderationStateModel{}).
			Where("state_id = ?", stateModel.StateID).
			Updates(map[string]any{
				"status":            stateModel.Status,
				"staged_values":     stateModel.StagedValues,
				"changed_by":        stateModel.ChangedBy,
				"reason":            stateModel.Reason,
				"first_approved_at": stateModel.FirstApprovedAt,
				"updated_at":        stateModel.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
