package postgres

import (
	"time"

	"github.com/google/uuid"
)

type monitoredRecordModel struct {
	RecordID   uuid.UUID `gorm:"column:record_id;type:uuid;primaryKey"`
	TypeName   string    `gorm:"column:type_name"`
	LiveValues string    `gorm:"column:live_values;type:jsonb"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (monitoredRecordModel) TableName() string { return "monitored_records" }

type moderationStateModel struct {
	StateID         uuid.UUID  `gorm:"column:state_id;type:uuid;primaryKey"`
	RecordID        uuid.UUID  `gorm:"column:record_id;type:uuid"`
	TypeName        string     `gorm:"column:type_name"`
	Status          string     `gorm:"column:status"`
	StagedValues    string     `gorm:"column:staged_values;type:jsonb"`
	ChangedBy       string     `gorm:"column:changed_by"`
	Reason          string     `gorm:"column:reason"`
	FirstApprovedAt *time.Time `gorm:"column:first_approved_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (moderationStateModel) TableName() string { return "moderation_states" }

type moderationDecisionModel struct {
	DecisionID uuid.UUID `gorm:"column:decision_id;type:uuid;primaryKey"`
	RecordID   uuid.UUID `gorm:"column:record_id;type:uuid"`
	TypeName   string    `gorm:"column:type_name"`
	Decision   string    `gorm:"column:decision"`
	Moderator  string    `gorm:"column:moderator"`
	Reason     string    `gorm:"column:reason"`
	DecidedAt  time.Time `gorm:"column:decided_at"`
}

func (moderationDecisionModel) TableName() string { return "moderation_decisions" }

type moderationOutboxModel struct {
	OutboxID      uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType     string     `gorm:"column:event_type"`
	PartitionKey  string     `gorm:"column:partition_key"`
	Payload       string     `gorm:"column:payload"`
	SchemaVersion string     `gorm:"column:schema_version"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	FirstSeenAt   time.Time  `gorm:"column:first_seen_at"`
	PublishedAt   *time.Time `gorm:"column:published_at"`
	RetryCount    int        `gorm:"column:retry_count"`
	LastError     *string    `gorm:"column:last_error"`
	LastErrorAt   *time.Time `gorm:"column:last_error_at"`
}

func (moderationOutboxModel) TableName() string { return "moderation_outbox" }

type moderationEventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	EventType   string    `gorm:"column:event_type"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (moderationEventDedupModel) TableName() string { return "moderation_event_dedup" }

type moderationIdempotencyModel struct {
	IdempotencyKey string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash    string    `gorm:"column:request_hash"`
	RecordID       uuid.UUID `gorm:"column:record_id;type:uuid"`
	Status         string    `gorm:"column:status"`
	ExpiresAt      time.Time `gorm:"column:expires_at"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (moderationIdempotencyModel) TableName() string { return "moderation_idempotency" }
