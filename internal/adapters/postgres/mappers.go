package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/domain"
)

func encodeFields(values domain.FieldValues) (string, error) {
	if values == nil {
		values = domain.FieldValues{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode field values: %w", err)
	}
	return string(raw), nil
}

func decodeFields(raw string) (domain.FieldValues, error) {
	values := domain.FieldValues{}
	if raw == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("decode field values: %w", err)
	}
	return values, nil
}

func toRecordModel(record domain.MonitoredRecord) (monitoredRecordModel, error) {
	live, err := encodeFields(record.Live)
	if err != nil {
		return monitoredRecordModel{}, err
	}
	return monitoredRecordModel{
		RecordID:   record.RecordID,
		TypeName:   record.TypeName,
		LiveValues: live,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}, nil
}

func toDomainRecord(rec monitoredRecordModel) (domain.MonitoredRecord, error) {
	live, err := decodeFields(rec.LiveValues)
	if err != nil {
		return domain.MonitoredRecord{}, err
	}
	return domain.MonitoredRecord{
		RecordID:  rec.RecordID,
		TypeName:  rec.TypeName,
		Live:      live,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

func toStateModel(state domain.ModerationState) (moderationStateModel, error) {
	staged, err := encodeFields(state.Staged)
	if err != nil {
		return moderationStateModel{}, err
	}
	return moderationStateModel{
		StateID:         state.StateID,
		RecordID:        state.RecordID,
		TypeName:        state.TypeName,
		Status:          string(state.Status),
		StagedValues:    staged,
		ChangedBy:       state.ChangedBy,
		Reason:          state.Reason,
		FirstApprovedAt: state.FirstApprovedAt,
		CreatedAt:       state.CreatedAt,
		UpdatedAt:       state.UpdatedAt,
	}, nil
}

func toDomainState(rec moderationStateModel) (domain.ModerationState, error) {
	staged, err := decodeFields(rec.StagedValues)
	if err != nil {
		return domain.ModerationState{}, err
	}
	return domain.ModerationState{
		StateID:         rec.StateID,
		RecordID:        rec.RecordID,
		TypeName:        rec.TypeName,
		Status:          domain.Status(rec.Status),
		Staged:          staged,
		ChangedBy:       rec.ChangedBy,
		Reason:          rec.Reason,
		FirstApprovedAt: rec.FirstApprovedAt,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}, nil
}
