package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/domain"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/ports"
)

const (
	eventModerationPending = "record.moderation_pending"
	eventRecordApproved    = "record.approved"
	eventRecordRejected    = "record.rejected"
)

type moderationEventData struct {
	RecordID  string `json:"record_id"`
	TypeName  string `json:"type"`
	Status    string `json:"status"`
	ChangedBy string `json:"changed_by,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

func (s *Service) enqueueModerationEvent(ctx context.Context, eventType string, pair ports.RecordWithState) error {
	occurredAt := s.nowFn()
	data := moderationEventData{
		RecordID:  pair.Record.RecordID.String(),
		TypeName:  pair.Record.TypeName,
		Status:    string(pair.State.Status),
		ChangedBy: pair.State.ChangedBy,
		UpdatedAt: occurredAt.Format(time.RFC3339),
	}
	envelope := map[string]any{
		"event_id":       uuid.NewString(),
		"event_type":     eventType,
		"occurred_at":    occurredAt.Format(time.RFC3339),
		"source_service": s.cfg.ServiceName,
		"schema_version": "1.0",
		"partition_key":  pair.Record.RecordID.String(),
		"data":           data,
	}
	payload, _ := json.Marshal(envelope)
	return s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:       uuid.New(),
		EventType:     eventType,
		PartitionKey:  pair.Record.RecordID.String(),
		Payload:       payload,
		OccurredAt:    occurredAt,
		SchemaVersion: "1.0",
	})
}

func hashRequest(v any) string {
	raw, _ := json.Marshal(v)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// reserveIdempotency claims key for this request. A key already claimed by
// an identical request returns the prior reservation so the caller can
// replay its outcome; the same key under a different request is a conflict.
func (s *Service) reserveIdempotency(ctx context.Context, key string, request any, recordID uuid.UUID) (*ports.IdempotencyRecord, error) {
	if key == "" {
		return nil, nil
	}
	hash := hashRequest(request)
	if err := s.idempotency.Reserve(ctx, key, hash, recordID, s.nowFn().Add(s.cfg.IdempotencyTTL)); err == nil {
		return nil, nil
	}
	prior, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if prior == nil || prior.RequestHash != hash {
		return nil, fmt.Errorf("%w: key %q was used by a different request", domain.ErrIdempotencyConflict, key)
	}
	return prior, nil
}

func cacheKeyRecord(typeName string, recordID uuid.UUID) string {
	return "moderation:record:" + typeName + ":" + recordID.String()
}
