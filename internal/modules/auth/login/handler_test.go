package login

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/signet-id/core/internal/middleware"
	"github.com/signet-id/core/internal/modules/auth/session"
)

func newTestRouter(t *testing.T, f *fixture, exposeCode bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v2")
	NewHandler(f.svc, f.sessions, exposeCode, f.resend).RegisterRoutes(api, middleware.Auth(f.sessions))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, out
}

func TestLoginEndpointsFullFlow(t *testing.T) {
	f := newFixture(t, ownerIdentity(t))
	r := newTestRouter(t, f, true)

	// Step one issues a code; expose_code surfaces it in-band for dev rigs.
	w, body := doJSON(t, r, http.MethodPost, "/api/v2/auth/login/credentials", "", gin.H{
		"email":    "owner@example.com",
		"password": "s3cret",
		"role":     "owner",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("credentials status = %d, body %v", w.Code, body)
	}
	code, _ := body["code"].(string)
	if code == "" {
		t.Fatalf("no code in response: %v", body)
	}

	// Step three mints the token and session.
	w, body = doJSON(t, r, http.MethodPost, "/api/v2/auth/login/verify", "", gin.H{
		"email": "owner@example.com",
		"role":  "owner",
		"code":  code,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("verify status = %d, body %v", w.Code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("no token in response: %v", body)
	}

	// The token opens the session surface.
	w, body = doJSON(t, r, http.MethodGet, "/api/v2/auth/sessions", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sessions status = %d, body %v", w.Code, body)
	}
	sessions, _ := body["sessions"].([]interface{})
	if len(sessions) != 1 {
		t.Fatalf("sessions = %v, want exactly one", body["sessions"])
	}

	// Sign out revokes the session; the same token is refused afterwards.
	w, _ = doJSON(t, r, http.MethodPost, "/api/v2/auth/sign-out", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sign-out status = %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodGet, "/api/v2/auth/sessions", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("sessions after sign-out = %d, want 401", w.Code)
	}
}

func TestLegacyDispatcher(t *testing.T) {
	f := newFixture(t, ownerIdentity(t))
	r := newTestRouter(t, f, true)

	w, body := doJSON(t, r, http.MethodPost, "/api/v2/auth/login", "", gin.H{
		"step":     StepCredentialValidation,
		"email":    "owner@example.com",
		"password": "s3cret",
		"role":     "owner",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("credential_validation status = %d, body %v", w.Code, body)
	}
	code, _ := body["code"].(string)

	w, body = doJSON(t, r, http.MethodPost, "/api/v2/auth/login", "", gin.H{
		"step":  StepFinalLogin,
		"email": "owner@example.com",
		"role":  "owner",
		"code":  code,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("final_login status = %d, body %v", w.Code, body)
	}
	if tok, _ := body["token"].(string); tok == "" {
		t.Fatalf("no token in final_login response: %v", body)
	}
}

func TestLegacyDispatcherUnknownStep(t *testing.T) {
	f := newFixture(t, ownerIdentity(t))
	r := newTestRouter(t, f, false)

	w, body := doJSON(t, r, http.MethodPost, "/api/v2/auth/login", "", gin.H{
		"step": "password_reset",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown step status = %d, want 400", w.Code)
	}
	if body["status"] != "fail" {
		t.Fatalf("status = %v, want fail", body["status"])
	}
}

func TestLegacyDispatcherMissingFields(t *testing.T) {
	f := newFixture(t, ownerIdentity(t))
	r := newTestRouter(t, f, false)

	w, body := doJSON(t, r, http.MethodPost, "/api/v2/auth/login", "", gin.H{
		"step":  StepCredentialValidation,
		"email": "owner@example.com",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing fields status = %d, want 400", w.Code)
	}
	if body["status"] != "fail" {
		t.Fatalf("status = %v, want fail", body["status"])
	}
}

func TestLoginErrorMapping(t *testing.T) {
	f := newFixture(t, ownerIdentity(t))
	r := newTestRouter(t, f, false)

	// Invalid password and unknown account look identical from outside.
	for _, email := range []string{"owner@example.com", "ghost@example.com"} {
		w, body := doJSON(t, r, http.MethodPost, "/api/v2/auth/login/credentials", "", gin.H{
			"email":    email,
			"password": "wrong",
			"role":     "owner",
		})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s status = %d, want 401", email, w.Code)
		}
		if body["message"] != "Invalid user credentials" {
			t.Fatalf("%s message = %v", email, body["message"])
		}
	}

	// Verification without any issued code.
	w, _ := doJSON(t, r, http.MethodPost, "/api/v2/auth/login/verify", "", gin.H{
		"email": "owner@example.com",
		"role":  "owner",
		"code":  "123456",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("verify without code status = %d, want 401", w.Code)
	}
}

func TestVerifyRequiresEmailOrMobile(t *testing.T) {
	f := newFixture(t, ownerIdentity(t))
	r := newTestRouter(t, f, false)

	w, body := doJSON(t, r, http.MethodPost, "/api/v2/auth/login/verify", "", gin.H{
		"role": "owner",
		"code": "123456",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body["status"] != "fail" {
		t.Fatalf("status = %v, want fail", body["status"])
	}
}

func TestCodeHiddenWithoutExposeFlag(t *testing.T) {
	f := newFixture(t, ownerIdentity(t))
	r := newTestRouter(t, f, false)

	w, body := doJSON(t, r, http.MethodPost, "/api/v2/auth/login/credentials", "", gin.H{
		"email":    "owner@example.com",
		"password": "s3cret",
		"role":     "owner",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %v", w.Code, body)
	}
	if _, ok := body["code"]; ok {
		t.Fatalf("code leaked in response: %v", body)
	}
}

func TestRevokeOtherSessions(t *testing.T) {
	f := newFixture(t, ownerIdentity(t))
	r := newTestRouter(t, f, true)

	login := func() string {
		t.Helper()
		_, body := doJSON(t, r, http.MethodPost, "/api/v2/auth/login/credentials", "", gin.H{
			"email":    "owner@example.com",
			"password": "s3cret",
			"role":     "owner",
		})
		code, _ := body["code"].(string)
		w, body := doJSON(t, r, http.MethodPost, "/api/v2/auth/login/verify", "", gin.H{
			"email": "owner@example.com",
			"role":  "owner",
			"code":  code,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("verify status = %d, body %v", w.Code, body)
		}
		token, _ := body["token"].(string)
		return token
	}

	first := login()
	second := login()

	w, _ := doJSON(t, r, http.MethodPost, "/api/v2/auth/revoke-other-sessions", second, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("revoke-other-sessions status = %d", w.Code)
	}

	// The first token's session is gone; the caller's survives.
	w, _ = doJSON(t, r, http.MethodGet, "/api/v2/auth/session", first, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("first session after revoke = %d, want 401", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodGet, "/api/v2/auth/session", second, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("second session after revoke = %d, want 200", w.Code)
	}
}

func TestRevokeSessionScopedToCaller(t *testing.T) {
	f := newFixture(t, ownerIdentity(t))
	r := newTestRouter(t, f, true)

	// A second user's live session, created out of band.
	other, err := f.sessions.Create(context.Background(), session.CreateInput{
		ID:     "sess-other",
		UserID: "user-2",
	})
	if err != nil {
		t.Fatalf("Create foreign session: %v", err)
	}

	_, body := doJSON(t, r, http.MethodPost, "/api/v2/auth/login/credentials", "", gin.H{
		"email":    "owner@example.com",
		"password": "s3cret",
		"role":     "owner",
	})
	code, _ := body["code"].(string)
	w, body := doJSON(t, r, http.MethodPost, "/api/v2/auth/login/verify", "", gin.H{
		"email": "owner@example.com",
		"role":  "owner",
		"code":  code,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("verify status = %d, body %v", w.Code, body)
	}
	token, _ := body["token"].(string)

	// Naming another user's session id is a silent no-op.
	w, _ = doJSON(t, r, http.MethodPost, "/api/v2/auth/revoke-session", token, gin.H{
		"session_id": other.ID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("revoke-session status = %d", w.Code)
	}
	if _, err := f.sessions.Validate(context.Background(), other.ID); err != nil {
		t.Fatalf("foreign session after revoke attempt = %v, want still valid", err)
	}

	// The caller's own session id still revokes.
	sessBody, _ := body["session"].(map[string]interface{})
	ownID, _ := sessBody["id"].(string)
	w, _ = doJSON(t, r, http.MethodPost, "/api/v2/auth/revoke-session", token, gin.H{
		"session_id": ownID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("own revoke-session status = %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodGet, "/api/v2/auth/session", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("own session after revoke = %d, want 401", w.Code)
	}
}

// blockedCooldown refuses every lease, as a live one in redis would.
type blockedCooldown struct{}

func (blockedCooldown) Acquire(context.Context, string, time.Duration) (bool, error) {
	return false, nil
}

func (blockedCooldown) Release(context.Context, string) error { return nil }

func TestCooldownRetryAfterHeader(t *testing.T) {
	f := newFixtureWithCooldown(t, blockedCooldown{}, 90*time.Second, ownerIdentity(t))
	r := newTestRouter(t, f, false)

	w, body := doJSON(t, r, http.MethodPost, "/api/v2/auth/login/credentials", "", gin.H{
		"email":    "owner@example.com",
		"password": "s3cret",
		"role":     "owner",
	})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429; body %v", w.Code, body)
	}
	if got := w.Header().Get("Retry-After"); got != "90" {
		t.Fatalf("Retry-After = %q, want 90", got)
	}
}
