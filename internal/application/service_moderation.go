package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/domain"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/ports"
)

const automoderateReason = "automoderation after prior approval"

// Approve promotes a record's staged moderated fields to the live copy and
// marks it approved. A missing moderation state is a not-found error.
func (s *Service) Approve(ctx context.Context, typeName string, recordID uuid.UUID, by, reason string) (RecordResponse, error) {
	cfg, err := s.registry.Lookup(typeName)
	if err != nil {
		return RecordResponse{}, err
	}
	pair, err := s.records.GetWithState(ctx, typeName, recordID)
	if err != nil {
		return RecordResponse{}, err
	}

	now := s.nowFn()
	live, state, err := domain.ApproveState(cfg, pair.State, pair.Record.Live, by, reason, now)
	if err != nil {
		return RecordResponse{}, err
	}
	pair.Record.Live = live
	pair.Record.UpdatedAt = now
	pair.State = state
	if err := s.records.UpdateWithState(ctx, pair); err != nil {
		return RecordResponse{}, err
	}
	_ = s.decisions.Append(ctx, domain.Decision{
		DecisionID: uuid.New(),
		RecordID:   recordID,
		TypeName:   typeName,
		Decision:   domain.StatusApproved,
		Moderator:  by,
		Reason:     reason,
		DecidedAt:  now,
	})
	_ = s.enqueueModerationEvent(ctx, eventRecordApproved, pair)
	_ = s.cache.Delete(ctx, cacheKeyRecord(typeName, recordID))
	return toRecordResponse(pair), nil
}

// Reject marks the pending candidate rejected. Live values keep the last
// approved version; the record is not hidden if it was already visible.
func (s *Service) Reject(ctx context.Context, typeName string, recordID uuid.UUID, by, reason string) (RecordResponse, error) {
	if _, err := s.registry.Lookup(typeName); err != nil {
		return RecordResponse{}, err
	}
	pair, err := s.records.GetWithState(ctx, typeName, recordID)
	if err != nil {
		return RecordResponse{}, err
	}

	now := s.nowFn()
	state, err := domain.RejectState(pair.State, by, reason, now)
	if err != nil {
		return RecordResponse{}, err
	}
	pair.State = state
	if err := s.records.UpdateWithState(ctx, pair); err != nil {
		return RecordResponse{}, err
	}
	_ = s.decisions.Append(ctx, domain.Decision{
		DecisionID: uuid.New(),
		RecordID:   recordID,
		TypeName:   typeName,
		Decision:   domain.StatusRejected,
		Moderator:  by,
		Reason:     reason,
		DecidedAt:  now,
	})
	_ = s.enqueueModerationEvent(ctx, eventRecordRejected, pair)
	_ = s.cache.Delete(ctx, cacheKeyRecord(typeName, recordID))
	return toRecordResponse(pair), nil
}

// Automoderate re-evaluates a record against its type's bypass policy. With
// bypass enabled and a prior approval, a pending staged copy is approved in
// place; anything else is a no-op. The call is idempotent: running it again
// over an already-applied record never reverts live values to a stale
// staged copy.
func (s *Service) Automoderate(ctx context.Context, typeName string, recordID uuid.UUID, actor string) (RecordResponse, error) {
	cfg, err := s.registry.Lookup(typeName)
	if err != nil {
		return RecordResponse{}, err
	}
	pair, err := s.records.GetWithState(ctx, typeName, recordID)
	if err != nil {
		return RecordResponse{}, err
	}

	if !cfg.BypassAfterApproval || !pair.State.Approved() || pair.State.Status != domain.StatusPending {
		return toRecordResponse(pair), nil
	}
	if actor == "" {
		return RecordResponse{}, fmt.Errorf("%w: automoderation requires an actor", domain.ErrInvalidInput)
	}
	return s.Approve(ctx, typeName, recordID, actor, automoderateReason)
}

// ListPendingQueue returns the review queue, newest submissions first.
func (s *Service) ListPendingQueue(ctx context.Context, limit, offset int) ([]QueueItemView, error) {
	if limit <= 0 {
		limit = s.cfg.QueuePageSize
	}
	if offset < 0 {
		offset = 0
	}
	states, err := s.states.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	queueSize, err := s.states.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]QueueItemView, 0, len(states))
	for _, state := range states {
		out = append(out, QueueItemView{
			RecordID:  state.RecordID.String(),
			TypeName:  state.TypeName,
			Staged:    state.Staged,
			ChangedBy: state.ChangedBy,
			QueueSize: queueSize,
			UpdatedAt: state.UpdatedAt,
		})
	}
	return out, nil
}

// ListDecisions returns the audit trail of approve/reject actions for one
// record, newest first.
func (s *Service) ListDecisions(ctx context.Context, typeName string, recordID uuid.UUID, limit int) ([]DecisionView, error) {
	if _, err := s.registry.Lookup(typeName); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.QueuePageSize
	}
	decisions, err := s.decisions.ListByRecord(ctx, typeName, recordID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]DecisionView, 0, len(decisions))
	for _, d := range decisions {
		out = append(out, DecisionView{
			Decision:  string(d.Decision),
			Moderator: d.Moderator,
			Reason:    d.Reason,
			DecidedAt: d.DecidedAt,
		})
	}
	return out, nil
}

// ValidateToken is used by the HTTP adapter's auth middleware.
func (s *Service) ValidateToken(ctx context.Context, token string) (ports.AuthClaims, error) {
	claims, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return ports.AuthClaims{}, err
	}
	if !claims.Valid {
		return ports.AuthClaims{}, domain.ErrUnauthorized
	}
	return claims, nil
}
