package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/internal/repository"
)

type memIdempotencyRepo struct {
	keys map[string]*domain.IdempotencyKey
}

func (m *memIdempotencyRepo) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	return m.keys[key], nil
}

func (m *memIdempotencyRepo) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	if _, exists := m.keys[key.Key]; !exists {
		m.keys[key.Key] = key
	}
	return nil
}

func bodyHash(body string) string {
	h := sha256.Sum256([]byte(body))
	return hex.EncodeToString(h[:])
}

// runIdempotency sends one POST through the middleware and returns the
// resulting context and recorder for inspection.
func runIdempotency(t *testing.T, repos *repository.Repositories, account *domain.Account, key, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", bytes.NewBufferString(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	c.Request = req
	if account != nil {
		c.Set(AccountContextKey, account)
	}

	IdempotencyMiddleware(repos, zap.NewNop())(c)
	return c, w
}

func TestIdempotencyReplayReturnsStoredBooking(t *testing.T) {
	account := &domain.Account{ID: uuid.New(), Role: domain.RoleCustomer, IsActive: true}
	bookingID := uuid.New()
	body := `{"pickup_date":"2026-09-01"}`

	repos := &repository.Repositories{IdempotencyKey: &memIdempotencyRepo{
		keys: map[string]*domain.IdempotencyKey{
			"key-1": {Key: "key-1", AccountID: account.ID, BookingID: bookingID, RequestHash: bodyHash(body)},
		},
	}}

	c, w := runIdempotency(t, repos, account, "key-1", body)
	if c.IsAborted() {
		t.Fatalf("replay with same payload should not abort, got status %d", w.Code)
	}

	_, _, existingID, isExisting := GetIdempotencyInfo(c)
	if !isExisting {
		t.Fatal("expected existing booking to be flagged for replay")
	}
	if existingID != bookingID.String() {
		t.Errorf("existing booking ID = %q, want %q", existingID, bookingID)
	}
}

func TestIdempotencyConflictOnDifferentPayload(t *testing.T) {
	account := &domain.Account{ID: uuid.New(), Role: domain.RoleCustomer, IsActive: true}

	repos := &repository.Repositories{IdempotencyKey: &memIdempotencyRepo{
		keys: map[string]*domain.IdempotencyKey{
			"key-1": {Key: "key-1", AccountID: account.ID, BookingID: uuid.New(), RequestHash: bodyHash(`{"a":1}`)},
		},
	}}

	c, w := runIdempotency(t, repos, account, "key-1", `{"a":2}`)
	if !c.IsAborted() {
		t.Fatal("same key with a different payload must abort")
	}
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestIdempotencyKeyScopedToAccount(t *testing.T) {
	owner := &domain.Account{ID: uuid.New(), Role: domain.RoleCustomer, IsActive: true}
	other := &domain.Account{ID: uuid.New(), Role: domain.RoleCustomer, IsActive: true}
	body := `{"pickup_date":"2026-09-01"}`

	repos := &repository.Repositories{IdempotencyKey: &memIdempotencyRepo{
		keys: map[string]*domain.IdempotencyKey{
			"shared-key": {Key: "shared-key", AccountID: owner.ID, BookingID: uuid.New(), RequestHash: bodyHash(body)},
		},
	}}

	// Identical key and payload from a different account must never replay
	// the owner's booking
	c, w := runIdempotency(t, repos, other, "shared-key", body)
	if !c.IsAborted() {
		t.Fatal("another account reusing the key must abort")
	}
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if _, _, _, isExisting := GetIdempotencyInfo(c); isExisting {
		t.Error("another account's booking must not be exposed for replay")
	}

	// The owner still replays fine
	c, w = runIdempotency(t, repos, owner, "shared-key", body)
	if c.IsAborted() {
		t.Fatalf("owner replay should not abort, got status %d", w.Code)
	}
}

func TestIdempotencyNewKeyRecordsHash(t *testing.T) {
	account := &domain.Account{ID: uuid.New(), Role: domain.RoleCustomer, IsActive: true}
	body := `{"pickup_date":"2026-09-01"}`

	repos := &repository.Repositories{IdempotencyKey: &memIdempotencyRepo{
		keys: map[string]*domain.IdempotencyKey{},
	}}

	c, _ := runIdempotency(t, repos, account, "fresh-key", body)
	if c.IsAborted() {
		t.Fatal("a fresh key should pass through")
	}

	key, requestHash, _, isExisting := GetIdempotencyInfo(c)
	if isExisting {
		t.Fatal("fresh key must not be flagged as existing")
	}
	if key != "fresh-key" {
		t.Errorf("key = %q, want fresh-key", key)
	}
	if requestHash != bodyHash(body) {
		t.Errorf("request hash = %q, want %q", requestHash, bodyHash(body))
	}
}

func TestIdempotencyNoHeaderPassesThrough(t *testing.T) {
	account := &domain.Account{ID: uuid.New(), Role: domain.RoleCustomer, IsActive: true}
	repos := &repository.Repositories{IdempotencyKey: &memIdempotencyRepo{
		keys: map[string]*domain.IdempotencyKey{},
	}}

	c, _ := runIdempotency(t, repos, account, "", `{"a":1}`)
	if c.IsAborted() {
		t.Fatal("request without an idempotency header should pass through")
	}
}
