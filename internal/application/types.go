package application

import (
	"time"

	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/domain"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/ports"
)

type Config struct {
	ServiceName    string
	RecordCacheTTL time.Duration
	QueuePageSize  int
	IdempotencyTTL time.Duration
	EventDedupTTL  time.Duration
}

type SaveRecordRequest struct {
	Fields       map[string]string `json:"fields"`
	UpdateFields []string          `json:"update_fields,omitempty"`
}

type DecisionRequest struct {
	Reason string `json:"reason"`
}

type ModerationView struct {
	Status          string            `json:"status"`
	Staged          map[string]string `json:"changed_values"`
	ChangedBy       string            `json:"changed_by,omitempty"`
	Reason          string            `json:"reason,omitempty"`
	FirstApprovedAt *time.Time        `json:"first_approved_at,omitempty"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type RecordResponse struct {
	RecordID   string            `json:"record_id"`
	TypeName   string            `json:"type"`
	Fields     map[string]string `json:"fields"`
	Moderation *ModerationView   `json:"moderation,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

type QueueItemView struct {
	RecordID  string            `json:"record_id"`
	TypeName  string            `json:"type"`
	Staged    map[string]string `json:"changed_values"`
	ChangedBy string            `json:"changed_by,omitempty"`
	QueueSize int64             `json:"queue_size"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type DecisionView struct {
	Decision  string    `json:"decision"`
	Moderator string    `json:"moderator"`
	Reason    string    `json:"reason"`
	DecidedAt time.Time `json:"decided_at"`
}

func toModerationView(state domain.ModerationState) *ModerationView {
	return &ModerationView{
		Status:          string(state.Status),
		Staged:          state.Staged,
		ChangedBy:       state.ChangedBy,
		Reason:          state.Reason,
		FirstApprovedAt: state.FirstApprovedAt,
		UpdatedAt:       state.UpdatedAt,
	}
}

func toRecordResponse(pair ports.RecordWithState) RecordResponse {
	return RecordResponse{
		RecordID:   pair.Record.RecordID.String(),
		TypeName:   pair.Record.TypeName,
		Fields:     pair.Record.Live,
		Moderation: toModerationView(pair.State),
		CreatedAt:  pair.Record.CreatedAt,
		UpdatedAt:  pair.Record.UpdatedAt,
	}
}

func toPublicRecordResponse(record domain.MonitoredRecord) RecordResponse {
	return RecordResponse{
		RecordID:  record.RecordID.String(),
		TypeName:  record.TypeName,
		Fields:    record.Live,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
