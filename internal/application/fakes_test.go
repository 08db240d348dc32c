package application_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/domain"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/ports"
)

type memoryStore struct {
	mu        sync.Mutex
	records   map[uuid.UUID]domain.MonitoredRecord
	states    map[uuid.UUID]domain.ModerationState
	decisions []domain.Decision
	outbox    []ports.OutboxEvent
	processed map[string]time.Time
	reserved  map[string]ports.IdempotencyRecord
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		records:   make(map[uuid.UUID]domain.MonitoredRecord),
		states:    make(map[uuid.UUID]domain.ModerationState),
		processed: make(map[string]time.Time),
		reserved:  make(map[string]ports.IdempotencyRecord),
	}
}

type fakeRecordRepo struct{ store *memoryStore }

func (r *fakeRecordRepo) Create(_ context.Context, pair ports.RecordWithState) (ports.RecordWithState, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.records[pair.Record.RecordID]; exists {
		return ports.RecordWithState{}, domain.ErrConflict
	}
	r.store.records[pair.Record.RecordID] = pair.Record
	r.store.states[pair.Record.RecordID] = pair.State
	return pair, nil
}

func (r *fakeRecordRepo) Get(_ context.Context, typeName string, recordID uuid.UUID) (domain.MonitoredRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.store.records[recordID]
	if !ok || rec.TypeName != typeName {
		return domain.MonitoredRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (r *fakeRecordRepo) GetWithState(ctx context.Context, typeName string, recordID uuid.UUID) (ports.RecordWithState, error) {
	rec, err := r.Get(ctx, typeName, recordID)
	if err != nil {
		return ports.RecordWithState{}, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	state, ok := r.store.states[recordID]
	if !ok {
		return ports.RecordWithState{}, domain.ErrNotFound
	}
	return ports.RecordWithState{Record: rec, State: state}, nil
}

func (r *fakeRecordRepo) List(_ context.Context, params ports.ListRecordsParams) ([]domain.MonitoredRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.MonitoredRecord
	for id, rec := range r.store.records {
		if rec.TypeName != params.TypeName {
			continue
		}
		if !params.IncludeHidden && r.store.states[id].FirstApprovedAt == nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *fakeRecordRepo) UpdateWithState(_ context.Context, pair ports.RecordWithState) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.records[pair.Record.RecordID]; !ok {
		return domain.ErrNotFound
	}
	r.store.records[pair.Record.RecordID] = pair.Record
	r.store.states[pair.Record.RecordID] = pair.State
	return nil
}

type fakeStateRepo struct{ store *memoryStore }

func (r *fakeStateRepo) GetByRecord(_ context.Context, typeName string, recordID uuid.UUID) (domain.ModerationState, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	state, ok := r.store.states[recordID]
	if !ok || state.TypeName != typeName {
		return domain.ModerationState{}, domain.ErrNotFound
	}
	return state, nil
}

func (r *fakeStateRepo) ListPending(_ context.Context, limit, _ int) ([]domain.ModerationState, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.ModerationState
	for _, state := range r.store.states {
		if state.Status == domain.StatusPending && len(out) < limit {
			out = append(out, state)
		}
	}
	return out, nil
}

func (r *fakeStateRepo) CountPending(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, state := range r.store.states {
		if state.Status == domain.StatusPending {
			n++
		}
	}
	return n, nil
}

type fakeDecisionRepo struct{ store *memoryStore }

func (r *fakeDecisionRepo) Append(_ context.Context, decision domain.Decision) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.decisions = append(r.store.decisions, decision)
	return nil
}

func (r *fakeDecisionRepo) ListByRecord(_ context.Context, typeName string, recordID uuid.UUID, _ int) ([]domain.Decision, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Decision
	for _, d := range r.store.decisions {
		if d.TypeName == typeName && d.RecordID == recordID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeOutboxRepo struct{ store *memoryStore }

func (r *fakeOutboxRepo) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.outbox = append(r.store.outbox, event)
	return nil
}

func (r *fakeOutboxRepo) FetchUnpublished(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]ports.OutboxRecord, 0, limit)
	for _, e := range r.store.outbox {
		if len(out) == limit {
			break
		}
		out = append(out, ports.OutboxRecord{OutboxID: e.EventID, EventType: e.EventType, PartitionKey: e.PartitionKey, Payload: e.Payload})
	}
	return out, nil
}

func (r *fakeOutboxRepo) MarkPublished(_ context.Context, _ uuid.UUID, _ time.Time) error { return nil }
func (r *fakeOutboxRepo) MarkFailed(_ context.Context, _ uuid.UUID, _ string, _ time.Time) error {
	return nil
}

type fakeDedupRepo struct{ store *memoryStore }

func (r *fakeDedupRepo) IsDuplicate(_ context.Context, eventID string, now time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	expires, ok := r.store.processed[eventID]
	return ok && expires.After(now), nil
}

func (r *fakeDedupRepo) MarkProcessed(_ context.Context, eventID, _ string, expiresAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.processed[eventID] = expiresAt
	return nil
}

type fakeIdempotencyRepo struct{ store *memoryStore }

func (r *fakeIdempotencyRepo) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.store.reserved[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *fakeIdempotencyRepo) Reserve(_ context.Context, key, requestHash string, recordID uuid.UUID, expiresAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.reserved[key]; ok {
		return errors.New("already reserved")
	}
	r.store.reserved[key] = ports.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		RecordID:    recordID,
		Status:      "reserved",
		ExpiresAt:   expiresAt,
	}
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	values  map[string]string
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key], nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
		c.deletes = append(c.deletes, k)
	}
	return nil
}

type fakeVerifier struct {
	claims ports.AuthClaims
	err    error
}

func (v *fakeVerifier) Verify(_ context.Context, _ string) (ports.AuthClaims, error) {
	if v.err != nil {
		return ports.AuthClaims{}, v.err
	}
	return v.claims, nil
}
