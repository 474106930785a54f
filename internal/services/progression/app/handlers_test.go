package app

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hawthornlabs/journey/internal/platform/token"
	"github.com/hawthornlabs/journey/internal/services/progression/domain"
	"github.com/hawthornlabs/journey/internal/services/progression/service"
	"github.com/hawthornlabs/journey/internal/services/progression/storage/sqlite"
)

func newTestMux(t *testing.T, verifier *token.Verifier) *http.ServeMux {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "progression.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	svc := service.New(domain.DefaultCatalog(), store)
	mux := http.NewServeMux()
	NewHandler(svc, verifier).RegisterRoutes(mux)
	return mux
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(recorder.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHandleHealth(t *testing.T) {
	mux := newTestMux(t, nil)
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestHandleGetProgressFreshUser(t *testing.T) {
	mux := newTestMux(t, nil)
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/users/user-1/progress", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var view progressView
	decodeBody(t, recorder, &view)
	if view.Snapshot.UserID != "user-1" {
		t.Fatalf("expected user-1, got %q", view.Snapshot.UserID)
	}
	if len(view.Snapshot.UnlockedChapters) != 1 || view.Snapshot.UnlockedChapters[0] != 1 {
		t.Fatalf("expected unlocked [1], got %v", view.Snapshot.UnlockedChapters)
	}
	if view.Snapshot.Level != 1 || view.Snapshot.TotalXP != 0 {
		t.Fatalf("expected level 1 with 0 XP, got %+v", view.Snapshot)
	}
	if len(view.Gates) == 0 {
		t.Fatal("expected gate summary entries")
	}
	if len(view.Snapshot.Groups) != 5 {
		t.Fatalf("expected 5 group summaries, got %d", len(view.Snapshot.Groups))
	}
}

func TestHandleCompleteChapter(t *testing.T) {
	mux := newTestMux(t, nil)

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/users/user-1/chapters/1/completions", nil))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var view completionView
	decodeBody(t, recorder, &view)
	if view.XPGained != 50 {
		t.Fatalf("expected 50 XP gained, got %d", view.XPGained)
	}
	if len(view.NewlyUnlocked) != 1 || view.NewlyUnlocked[0] != 2 {
		t.Fatalf("expected newly unlocked [2], got %v", view.NewlyUnlocked)
	}

	// Replays are accepted with a zero delta and a 200.
	recorder = httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/users/user-1/chapters/1/completions", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", recorder.Code)
	}
	decodeBody(t, recorder, &view)
	if view.XPGained != 0 || len(view.NewlyUnlocked) != 0 {
		t.Fatalf("expected zero delta on replay, got %+v", view)
	}
}

func TestHandleCompleteChapterNotUnlocked(t *testing.T) {
	mux := newTestMux(t, nil)
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/users/user-1/chapters/10/completions", nil))
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", recorder.Code)
	}

	var view errorView
	decodeBody(t, recorder, &view)
	if view.Error.Code != "CHAPTER_NOT_UNLOCKED" {
		t.Fatalf("expected CHAPTER_NOT_UNLOCKED, got %q", view.Error.Code)
	}
}

func TestHandleCompleteChapterUnknown(t *testing.T) {
	mux := newTestMux(t, nil)
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/users/user-1/chapters/99/completions", nil))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}

	var view errorView
	decodeBody(t, recorder, &view)
	if view.Error.Code != "CHAPTER_UNKNOWN" {
		t.Fatalf("expected CHAPTER_UNKNOWN, got %q", view.Error.Code)
	}
}

func TestHandleCompleteChapterBadNumber(t *testing.T) {
	mux := newTestMux(t, nil)
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/users/user-1/chapters/abc/completions", nil))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func signTestToken(t *testing.T, key ed25519.PrivateKey, userID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss":     "journey-test",
		"aud":     "progression",
		"exp":     time.Now().Add(time.Hour).Unix(),
		"user_id": userID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestHandleGetProgressWithVerifier(t *testing.T) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	verifier := &token.Verifier{
		Issuer:   "journey-test",
		Audience: "progression",
		Key:      public,
		Now:      time.Now,
	}
	mux := newTestMux(t, verifier)

	// Missing token.
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/users/user-1/progress", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", recorder.Code)
	}

	// Token for a different user.
	recorder = httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/users/user-1/progress", nil)
	request.Header.Set("Authorization", "Bearer "+signTestToken(t, private, "user-2"))
	mux.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for user mismatch, got %d", recorder.Code)
	}

	// Matching token.
	recorder = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodGet, "/v1/users/user-1/progress", nil)
	request.Header.Set("Authorization", "Bearer "+signTestToken(t, private, "user-1"))
	mux.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d: %s", recorder.Code, recorder.Body.String())
	}
}
