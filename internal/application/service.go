package application

import (
	"time"

	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/domain"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/ports"
)

type Service struct {
	cfg         Config
	registry    *domain.Registry
	records     ports.RecordRepository
	states      ports.ModerationStateRepository
	decisions   ports.DecisionLogRepository
	outbox      ports.OutboxRepository
	eventDedup  ports.EventDedupRepository
	idempotency ports.IdempotencyRepository
	cache       ports.Cache
	verifier    ports.AuthVerifier
	nowFn       func() time.Time
}

type Dependencies struct {
	Config      Config
	Registry    *domain.Registry
	Records     ports.RecordRepository
	States      ports.ModerationStateRepository
	Decisions   ports.DecisionLogRepository
	Outbox      ports.OutboxRepository
	EventDedup  ports.EventDedupRepository
	Idempotency ports.IdempotencyRepository
	Cache       ports.Cache
	Verifier    ports.AuthVerifier
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "M20-Moderation-Service"
	}
	if cfg.RecordCacheTTL <= 0 {
		cfg.RecordCacheTTL = 5 * time.Minute
	}
	if cfg.QueuePageSize <= 0 {
		cfg.QueuePageSize = 20
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 7 * 24 * time.Hour
	}
	if cfg.EventDedupTTL <= 0 {
		cfg.EventDedupTTL = 7 * 24 * time.Hour
	}

	return &Service{
		cfg:         cfg,
		registry:    deps.Registry,
		records:     deps.Records,
		states:      deps.States,
		decisions:   deps.Decisions,
		outbox:      deps.Outbox,
		eventDedup:  deps.EventDedup,
		idempotency: deps.Idempotency,
		cache:       deps.Cache,
		verifier:    deps.Verifier,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
}
