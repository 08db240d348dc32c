package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	httpadapter "github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/adapters/http"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/application"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/domain"
	"github.com/viralforge/mesh/services/trust-compliance/M20-moderation-service/internal/ports"
)

type memoryBackend struct {
	mu      sync.Mutex
	records map[uuid.UUID]domain.MonitoredRecord
	states  map[uuid.UUID]domain.ModerationState
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{
		records: make(map[uuid.UUID]domain.MonitoredRecord),
		states:  make(map[uuid.UUID]domain.ModerationState),
	}
}

func (b *memoryBackend) Create(_ context.Context, pair ports.RecordWithState) (ports.RecordWithState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[pair.Record.RecordID] = pair.Record
	b.states[pair.Record.RecordID] = pair.State
	return pair, nil
}

func (b *memoryBackend) Get(_ context.Context, typeName string, recordID uuid.UUID) (domain.MonitoredRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.records[recordID]
	if !ok || rec.TypeName != typeName {
		return domain.MonitoredRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (b *memoryBackend) GetWithState(ctx context.Context, typeName string, recordID uuid.UUID) (ports.RecordWithState, error) {
	rec, err := b.Get(ctx, typeName, recordID)
	if err != nil {
		return ports.RecordWithState{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return ports.RecordWithState{Record: rec, State: b.states[recordID]}, nil
}

func (b *memoryBackend) List(_ context.Context, params ports.ListRecordsParams) ([]domain.MonitoredRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.MonitoredRecord
	for id, rec := range b.records {
		if rec.TypeName != params.TypeName {
			continue
		}
		if !params.IncludeHidden && b.states[id].FirstApprovedAt == nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (b *memoryBackend) UpdateWithState(_ context.Context, pair ports.RecordWithState) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.records[pair.Record.RecordID]; !ok {
		return domain.ErrNotFound
	}
	b.records[pair.Record.RecordID] = pair.Record
	b.states[pair.Record.RecordID] = pair.State
	return nil
}

func (b *memoryBackend) GetByRecord(_ context.Context, typeName string, recordID uuid.UUID) (domain.ModerationState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, ok := b.states[recordID]
	if !ok || state.TypeName != typeName {
		return domain.ModerationState{}, domain.ErrNotFound
	}
	return state, nil
}

func (b *memoryBackend) ListPending(_ context.Context, limit, _ int) ([]domain.ModerationState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.ModerationState
	for _, state := range b.states {
		if state.Status == domain.StatusPending && len(out) < limit {
			out = append(out, state)
		}
	}
	return out, nil
}

func (b *memoryBackend) CountPending(_ context.Context) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var n int64
	for _, state := range b.states {
		if state.Status == domain.StatusPending {
			n++
		}
	}
	return n, nil
}

func (b *memoryBackend) Append(_ context.Context, _ domain.Decision) error { return nil }
func (b *memoryBackend) ListByRecord(_ context.Context, _ string, _ uuid.UUID, _ int) ([]domain.Decision, error) {
	return nil, nil
}

func (b *memoryBackend) Enqueue(_ context.Context, _ ports.OutboxEvent) error { return nil }
func (b *memoryBackend) FetchUnpublished(_ context.Context, _ int) ([]ports.OutboxRecord, error) {
	return nil, nil
}
func (b *memoryBackend) MarkPublished(_ context.Context, _ uuid.UUID, _ time.Time) error { return nil }
func (b *memoryBackend) MarkFailed(_ context.Context, _ uuid.UUID, _ string, _ time.Time) error {
	return nil
}

func (b *memoryBackend) IsDuplicate(_ context.Context, _ string, _ time.Time) (bool, error) {
	return false, nil
}
func (b *memoryBackend) MarkProcessed(_ context.Context, _, _ string, _ time.Time) error { return nil }

func (b *memoryBackend) GetReservation(_ context.Context, _ string) (*ports.IdempotencyRecord, error) {
	return nil, nil
}
func (b *memoryBackend) Reserve(_ context.Context, _, _ string, _ uuid.UUID, _ time.Time) error {
	return nil
}

type noopCache struct{}

func (noopCache) Get(_ context.Context, _ string) (string, error)           { return "", nil }
func (noopCache) Set(_ context.Context, _, _ string, _ time.Duration) error { return nil }
func (noopCache) Delete(_ context.Context, _ ...string) error               { return nil }

type staticVerifier struct{}

func (staticVerifier) Verify(_ context.Context, token string) (ports.AuthClaims, error) {
	switch token {
	case "admin-token":
		return ports.AuthClaims{Subject: "mod-1", Role: "admin", Valid: true}, nil
	case "user-token":
		return ports.AuthClaims{Subject: "user-1", Role: "creator", Valid: true}, nil
	default:
		return ports.AuthClaims{}, domain.ErrUnauthorized
	}
}

type idemAdapter struct{ *memoryBackend }

func (a idemAdapter) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	return a.GetReservation(ctx, key)
}

func newTestRouter(t *testing.T) (http.Handler, *memoryBackend) {
	t.Helper()
	registry, err := domain.NewRegistry(domain.TypeConfig{
		Name:            "user_profile",
		Fields:          []string{"description", "url"},
		ModeratedFields: []string{"description", "url"},
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	backend := newMemoryBackend()
	svc := application.NewService(application.Dependencies{
		Registry:    registry,
		Records:     backend,
		States:      backend,
		Decisions:   backend,
		Outbox:      backend,
		EventDedup:  backend,
		Idempotency: idemAdapter{backend},
		Cache:       noopCache{},
		Verifier:    staticVerifier{},
	})
	return httpadapter.NewRouter(httpadapter.NewHandler(svc)), backend
}

func createProfile(t *testing.T, router http.Handler) string {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"fields": map[string]string{"description": "hello", "url": "http://a"},
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/records/user_profile/", strings.NewReader(string(body)))
	req.Header.Set("Authorization", "Bearer user-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data struct {
			RecordID string `json:"record_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return envelope.Data.RecordID
}

func TestCreateRequiresAuth(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/records/user_profile/", strings.NewReader(`{"fields":{"description":"x"}}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminQueueForbiddenForNonAdmin(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/moderation/queue", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestApproveEndpoint(t *testing.T) {
	t.Parallel()

	router, backend := newTestRouter(t)
	recordID := createProfile(t, router)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/moderation/user_profile/"+recordID+"/approve", strings.NewReader(`{"reason":"fine"}`))
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status %d: %s", rec.Code, rec.Body.String())
	}
	state := backend.states[uuid.MustParse(recordID)]
	if state.Status != domain.StatusApproved {
		t.Fatalf("expected approved state, got %s", state.Status)
	}
}

func TestConsoleFormApproveRedirects(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	recordID := createProfile(t, router)

	form := url.Values{"action": {"approve"}, "reason": {"checked manually"}}
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/moderation/user_profile/"+recordID, strings.NewReader(form.Encode()))
	req.Header.Set("Authorization", "Bearer admin-token")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/v1/admin/moderation/queue" {
		t.Fatalf("unexpected redirect target %q", loc)
	}
}

func TestConsoleFormRejectsUnknownAction(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	recordID := createProfile(t, router)

	form := url.Values{"action": {"escalate"}}
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/moderation/user_profile/"+recordID, strings.NewReader(form.Encode()))
	req.Header.Set("Authorization", "Bearer admin-token")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetRecordNotFound(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/records/user_profile/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
