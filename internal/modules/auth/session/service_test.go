package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/signet-id/core/internal/models"
	"go.uber.org/zap"
)

type memStore struct {
	mu       sync.Mutex
	sessions map[string]*models.AuthSession
	writes   int
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]*models.AuthSession{}}
}

func (m *memStore) Create(_ context.Context, sess *models.AuthSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	cp := *sess
	m.sessions[sess.ID] = &cp
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*models.AuthSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (m *memStore) Deactivate(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if sess, ok := m.sessions[id]; ok && sess.UserID == userID {
		sess.Active = false
	}
	return nil
}

func (m *memStore) DeactivateAll(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	for _, sess := range m.sessions {
		if sess.UserID == userID {
			sess.Active = false
		}
	}
	return nil
}

func (m *memStore) DeactivateAllExcept(_ context.Context, userID, keepID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	for _, sess := range m.sessions {
		if sess.UserID == userID && sess.ID != keepID {
			sess.Active = false
		}
	}
	return nil
}

func (m *memStore) ListActive(_ context.Context, userID string, now time.Time) ([]models.AuthSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AuthSession
	for _, sess := range m.sessions {
		if sess.UserID == userID && sess.Active && sess.ExpiresAt.After(now) {
			out = append(out, *sess)
		}
	}
	return out, nil
}

func (m *memStore) Touch(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if sess, ok := m.sessions[id]; ok && sess.Active && sess.ExpiresAt.After(at) {
		sess.LastActivityAt = at
	}
	return nil
}

func (m *memStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func newTestService(store Store, at time.Time) *Service {
	svc := NewService(store, 8*time.Hour, time.UTC, zap.NewNop())
	svc.now = func() time.Time { return at }
	return svc
}

func TestCreateAndValidate(t *testing.T) {
	store := newMemStore()
	t0 := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, t0)

	sess, err := svc.Create(context.Background(), CreateInput{
		ID:     "sess-1",
		UserID: "user-1",
		Token:  "token-1",
		Device: "web",
		IP:     "1.2.3.4",
		UA:     "go-test",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !sess.Active {
		t.Fatal("new session not active")
	}
	if want := t0.Add(8 * time.Hour); !sess.ExpiresAt.Equal(want) {
		t.Fatalf("expires_at = %v, want %v", sess.ExpiresAt, want)
	}

	got, err := svc.Validate(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.UserID != "user-1" {
		t.Fatalf("user_id = %q, want user-1", got.UserID)
	}
}

func TestValidateExpiry(t *testing.T) {
	store := newMemStore()
	t0 := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, t0)

	if _, err := svc.Create(context.Background(), CreateInput{ID: "sess-1", UserID: "user-1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	svc.now = func() time.Time { return t0.Add(8*time.Hour - time.Minute) }
	if _, err := svc.Validate(context.Background(), "sess-1"); err != nil {
		t.Fatalf("Validate before expiry: %v", err)
	}

	// 9 hours in, an 8-hour session is dead.
	svc.now = func() time.Time { return t0.Add(9 * time.Hour) }
	if _, err := svc.Validate(context.Background(), "sess-1"); !errors.Is(err, ErrExpired) {
		t.Fatalf("Validate after expiry = %v, want ErrExpired", err)
	}
}

func TestValidateNeverMutates(t *testing.T) {
	store := newMemStore()
	t0 := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, t0)

	if _, err := svc.Create(context.Background(), CreateInput{ID: "sess-1", UserID: "user-1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	before := store.writeCount()

	for i := 0; i < 3; i++ {
		if _, err := svc.Validate(context.Background(), "sess-1"); err != nil {
			t.Fatalf("Validate %d: %v", i, err)
		}
	}
	if got := store.writeCount(); got != before {
		t.Fatalf("Validate issued %d writes, want 0", got-before)
	}

	svc.Touch(context.Background(), "sess-1")
	if got := store.writeCount(); got != before+1 {
		t.Fatalf("Touch writes = %d, want 1", got-before)
	}
}

func TestValidateUnknownAndRevoked(t *testing.T) {
	store := newMemStore()
	t0 := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, t0)

	if _, err := svc.Validate(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Validate unknown = %v, want ErrNotFound", err)
	}

	if _, err := svc.Create(context.Background(), CreateInput{ID: "sess-1", UserID: "user-1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Revoke(context.Background(), "user-1", "sess-1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := svc.Validate(context.Background(), "sess-1"); !errors.Is(err, ErrInactive) {
		t.Fatalf("Validate revoked = %v, want ErrInactive", err)
	}

	// Revoking again, or revoking nothing, stays quiet.
	if err := svc.Revoke(context.Background(), "user-1", "sess-1"); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}
	if err := svc.Revoke(context.Background(), "user-1", "  "); err != nil {
		t.Fatalf("blank Revoke: %v", err)
	}
}

func TestRevokeScopedToOwner(t *testing.T) {
	store := newMemStore()
	t0 := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, t0)

	if _, err := svc.Create(context.Background(), CreateInput{ID: "sess-a", UserID: "user-a"}); err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{ID: "sess-b", UserID: "user-b"}); err != nil {
		t.Fatalf("Create b: %v", err)
	}

	// user-a naming user-b's session id must not touch it.
	if err := svc.Revoke(context.Background(), "user-a", "sess-b"); err != nil {
		t.Fatalf("foreign Revoke: %v", err)
	}
	if _, err := svc.Validate(context.Background(), "sess-b"); err != nil {
		t.Fatalf("foreign session after revoke attempt = %v, want still valid", err)
	}

	// The owner can.
	if err := svc.Revoke(context.Background(), "user-b", "sess-b"); err != nil {
		t.Fatalf("owner Revoke: %v", err)
	}
	if _, err := svc.Validate(context.Background(), "sess-b"); !errors.Is(err, ErrInactive) {
		t.Fatalf("owned session after revoke = %v, want ErrInactive", err)
	}
}

func TestRevokeAllAndExcept(t *testing.T) {
	store := newMemStore()
	t0 := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, t0)

	for _, id := range []string{"sess-1", "sess-2", "sess-3"} {
		if _, err := svc.Create(context.Background(), CreateInput{ID: id, UserID: "user-1"}); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	if err := svc.RevokeAllExcept(context.Background(), "user-1", "sess-2"); err != nil {
		t.Fatalf("RevokeAllExcept: %v", err)
	}
	active, err := svc.ListActive(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 1 || active[0].ID != "sess-2" {
		t.Fatalf("active after except = %v, want only sess-2", active)
	}

	if err := svc.RevokeAll(context.Background(), "user-1"); err != nil {
		t.Fatalf("RevokeAll: %v", err)
	}
	active, err = svc.ListActive(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("active after revoke all = %d, want 0", len(active))
	}
}
