package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/domain"
)

type recordSubmittedEvent struct {
	EventID string `json:"event_id"`
	Data    struct {
		TypeName     string            `json:"type"`
		RecordID     string            `json:"record_id,omitempty"`
		Fields       map[string]string `json:"fields"`
		UpdateFields []string          `json:"update_fields,omitempty"`
		Actor        string            `json:"actor"`
	} `json:"data"`
}

// HandleRecordSubmitted ingests a save published by another service. The
// event id is deduplicated so a redelivered message does not run a second
// save.
func (s *Service) HandleRecordSubmitted(ctx context.Context, payload []byte) error {
	var evt recordSubmittedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("%w: invalid record.submitted payload", domain.ErrInvalidInput)
	}
	if evt.EventID == "" {
		return fmt.Errorf("%w: record.submitted requires event_id", domain.ErrInvalidInput)
	}
	dup, err := s.eventDedup.IsDuplicate(ctx, evt.EventID, s.nowFn())
	if err != nil {
		return err
	}
	if dup {
		return nil
	}

	req := SaveRecordRequest{Fields: evt.Data.Fields, UpdateFields: evt.Data.UpdateFields}
	if evt.Data.RecordID == "" {
		_, err = s.CreateRecord(ctx, evt.Data.TypeName, req, evt.Data.Actor, "")
	} else {
		var recordID uuid.UUID
		recordID, err = uuid.Parse(evt.Data.RecordID)
		if err != nil {
			return fmt.Errorf("%w: invalid record_id", domain.ErrInvalidInput)
		}
		_, err = s.SaveRecord(ctx, evt.Data.TypeName, recordID, req, evt.Data.Actor, "")
	}
	if err != nil {
		return err
	}
	return s.eventDedup.MarkProcessed(ctx, evt.EventID, "record.submitted", s.nowFn().Add(s.cfg.EventDedupTTL))
}
