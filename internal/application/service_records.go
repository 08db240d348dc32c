package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/domain"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/ports"
)

// CreateRecord runs the first save of a new monitored record. The record and
// its moderation state are committed together; a type with moderated fields
// starts pending (and hidden, when the type gates visibility). Retrying an
// identical create under the same idempotency key replays the record the
// first attempt produced.
func (s *Service) CreateRecord(ctx context.Context, typeName string, req SaveRecordRequest, actor, idempotencyKey string) (RecordResponse, error) {
	cfg, err := s.registry.Lookup(typeName)
	if err != nil {
		return RecordResponse{}, err
	}
	if len(req.UpdateFields) > 0 {
		return RecordResponse{}, fmt.Errorf("%w: update_fields is not valid on create", domain.ErrInvalidInput)
	}

	record, state, err := domain.NewRecord(cfg, req.Fields, actor, s.nowFn())
	if err != nil {
		return RecordResponse{}, err
	}
	prior, err := s.reserveIdempotency(ctx, idempotencyKey, req, record.RecordID)
	if err != nil {
		return RecordResponse{}, err
	}
	if prior != nil {
		replay, err := s.records.GetWithState(ctx, typeName, prior.RecordID)
		if err != nil {
			return RecordResponse{}, err
		}
		return toRecordResponse(replay), nil
	}
	pair, err := s.records.Create(ctx, ports.RecordWithState{Record: record, State: state})
	if err != nil {
		return RecordResponse{}, err
	}
	if pair.State.Status == domain.StatusPending {
		_ = s.enqueueModerationEvent(ctx, eventModerationPending, pair)
	}
	return toRecordResponse(pair), nil
}

// SaveRecord runs the diff engine over an update to an existing record.
// When req.UpdateFields is set, only the named fields are considered. An
// identical retry under the same idempotency key returns the record as the
// first attempt left it, without running the diff engine again.
func (s *Service) SaveRecord(ctx context.Context, typeName string, recordID uuid.UUID, req SaveRecordRequest, actor, idempotencyKey string) (RecordResponse, error) {
	cfg, err := s.registry.Lookup(typeName)
	if err != nil {
		return RecordResponse{}, err
	}
	prior, err := s.reserveIdempotency(ctx, idempotencyKey, req, recordID)
	if err != nil {
		return RecordResponse{}, err
	}
	pair, err := s.records.GetWithState(ctx, typeName, recordID)
	if err != nil {
		return RecordResponse{}, err
	}
	if prior != nil {
		return toRecordResponse(pair), nil
	}

	wasPending := pair.State.Status == domain.StatusPending
	outcome, err := domain.ApplySave(cfg, pair.State, pair.Record.Live, req.Fields, req.UpdateFields, actor, s.nowFn())
	if err != nil {
		return RecordResponse{}, err
	}
	pair.Record.Live = outcome.Live
	pair.Record.UpdatedAt = s.nowFn()
	pair.State = outcome.State
	if err := s.records.UpdateWithState(ctx, pair); err != nil {
		return RecordResponse{}, err
	}

	if outcome.EnteredPending && !wasPending {
		_ = s.enqueueModerationEvent(ctx, eventModerationPending, pair)
	}
	_ = s.cache.Delete(ctx, cacheKeyRecord(typeName, recordID))
	return toRecordResponse(pair), nil
}

// GetRecord returns the live view of a record, the one ordinary readers see.
func (s *Service) GetRecord(ctx context.Context, typeName string, recordID uuid.UUID) (RecordResponse, error) {
	if _, err := s.registry.Lookup(typeName); err != nil {
		return RecordResponse{}, err
	}
	key := cacheKeyRecord(typeName, recordID)
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var resp RecordResponse
		if json.Unmarshal([]byte(cached), &resp) == nil {
			return resp, nil
		}
	}
	record, err := s.records.Get(ctx, typeName, recordID)
	if err != nil {
		return RecordResponse{}, err
	}
	resp := toPublicRecordResponse(record)
	if raw, err := json.Marshal(resp); err == nil {
		_ = s.cache.Set(ctx, key, string(raw), s.cfg.RecordCacheTTL)
	}
	return resp, nil
}

// ListRecords returns visible records of one type. Never-approved records of
// a visibility-gated type are excluded unless includeHidden is set; once a
// record has been approved it stays listed through later pending or rejected
// states.
func (s *Service) ListRecords(ctx context.Context, typeName string, includeHidden bool, limit, offset int) ([]RecordResponse, error) {
	cfg, err := s.registry.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.QueuePageSize
	}
	if offset < 0 {
		offset = 0
	}
	records, err := s.records.List(ctx, ports.ListRecordsParams{
		TypeName:      typeName,
		IncludeHidden: includeHidden || !cfg.HasVisibilityField(),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]RecordResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toPublicRecordResponse(record))
	}
	return out, nil
}

// GetModerationState exposes the companion state of a record, staged copy
// included.
func (s *Service) GetModerationState(ctx context.Context, typeName string, recordID uuid.UUID) (ModerationView, error) {
	if _, err := s.registry.Lookup(typeName); err != nil {
		return ModerationView{}, err
	}
	state, err := s.states.GetByRecord(ctx, typeName, recordID)
	if err != nil {
		return ModerationView{}, err
	}
	return *toModerationView(state), nil
}
