package postgres

import (
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Records     ports.RecordRepository
	States      ports.ModerationStateRepository
	Decisions   ports.DecisionLogRepository
	Outbox      ports.OutboxRepository
	EventDedup  ports.EventDedupRepository
	Idempotency ports.IdempotencyRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Records:     &recordRepository{db: db},
		States:      &stateRepository{db: db},
		Decisions:   &decisionRepository{db: db},
		Outbox:      &outboxRepository{db: db},
		EventDedup:  &eventDedupRepository{db: db},
		Idempotency: &idempotencyRepository{db: db},
	}
}
