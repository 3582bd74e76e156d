package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/speaker-diarize/backend/internal/auth"
	"github.com/speaker-diarize/backend/internal/db"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	database, err := db.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.EnsureAdmin("admin", "secret"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	return NewAuthHandler(database, auth.NewJWTService("test-secret"))
}

func doLogin(h *AuthHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func TestLogin_Success(t *testing.T) {
	h := newAuthHandler(t)

	rec := doLogin(h, `{"username":"admin","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token     string    `json:"token"`
		Username  string    `json:"username"`
		Role      string    `json:"role"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if resp.Username != "admin" || resp.Role != "admin" {
		t.Fatalf("unexpected identity: %+v", resp)
	}
	if !resp.ExpiresAt.After(time.Now()) {
		t.Fatalf("token already expired: %v", resp.ExpiresAt)
	}
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	h := newAuthHandler(t)

	wrongPass := doLogin(h, `{"username":"admin","password":"nope"}`)
	unknownUser := doLogin(h, `{"username":"ghost","password":"secret"}`)

	if wrongPass.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("status %d / %d, want 401 for both", wrongPass.Code, unknownUser.Code)
	}
	// Unknown user and wrong password must be indistinguishable.
	if wrongPass.Body.String() != unknownUser.Body.String() {
		t.Fatalf("credential failures differ: %q vs %q", wrongPass.Body.String(), unknownUser.Body.String())
	}
}

func TestLogin_RejectsMalformedBody(t *testing.T) {
	h := newAuthHandler(t)
	if rec := doLogin(h, "not json"); rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}
