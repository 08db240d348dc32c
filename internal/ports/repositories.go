package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/domain"
)

// RecordWithState pairs a monitored record with its companion state, the
// unit every moderated write commits atomically.
type RecordWithState struct {
	Record domain.MonitoredRecord
	State  domain.ModerationState
}

type ListRecordsParams struct {
	TypeName      string
	IncludeHidden bool
	Limit         int
	Offset        int
}

type RecordRepository interface {
	// Create persists the record and its moderation state in one
	// transaction.
	Create(ctx context.Context, pair RecordWithState) (RecordWithState, error)
	Get(ctx context.Context, typeName string, recordID uuid.UUID) (domain.MonitoredRecord, error)
	GetWithState(ctx context.Context, typeName string, recordID uuid.UUID) (RecordWithState, error)
	// List returns records of one type. Unless IncludeHidden is set, types
	// with a visibility field exclude records that have never been approved.
	List(ctx context.Context, params ListRecordsParams) ([]domain.MonitoredRecord, error)
	// UpdateWithState writes the live values and the moderation state in one
	// transaction.
	UpdateWithState(ctx context.Context, pair RecordWithState) error
}

type ModerationStateRepository interface {
	GetByRecord(ctx context.Context, typeName string, recordID uuid.UUID) (domain.ModerationState, error)
	ListPending(ctx context.Context, limit, offset int) ([]domain.ModerationState, error)
	CountPending(ctx context.Context) (int64, error)
}

type DecisionLogRepository interface {
	Append(ctx context.Context, decision domain.Decision) error
	ListByRecord(ctx context.Context, typeName string, recordID uuid.UUID, limit int) ([]domain.Decision, error)
}

type OutboxEvent struct {
	EventID       uuid.UUID
	EventType     string
	PartitionKey  string
	Payload       []byte
	OccurredAt    time.Time
	SchemaVersion string
}

type OutboxRecord struct {
	OutboxID     uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	RetryCount   int
	PublishedAt  *time.Time
	LastError    *string
	LastErrorAt  *time.Time
	FirstSeenAt  time.Time
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	FetchUnpublished(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error
}

type EventDedupRepository interface {
	IsDuplicate(ctx context.Context, eventID string, now time.Time) (bool, error)
	MarkProcessed(ctx context.Context, eventID, eventType string, expiresAt time.Time) error
}

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	RecordID    uuid.UUID
	Status      string
	ExpiresAt   time.Time
}

// IdempotencyRepository claims request keys. A reservation remembers the
// record it produced so a retried identical request can replay the prior
// outcome instead of failing.
type IdempotencyRepository interface {
	// Get returns the reservation for key, or nil when none exists.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	Reserve(ctx context.Context, key, requestHash string, recordID uuid.UUID, expiresAt time.Time) error
}
