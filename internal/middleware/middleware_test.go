package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nutriscan/nutriscan-go/internal/crypto"
)

const testSecret = "test-secret"

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func echoUserID(w http.ResponseWriter, r *http.Request) {
	id, ok := UserIDFromContext(r.Context())
	json.NewEncoder(w).Encode(map[string]any{"id": id, "ok": ok})
}

func TestJWTAuth(t *testing.T) {
	valid, _ := crypto.GenerateToken(7, "a@b.co", testSecret, time.Hour)
	foreign, _ := crypto.GenerateToken(7, "a@b.co", "other-secret", time.Hour)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{"missing", "", http.StatusUnauthorized, "missing authorization header"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "invalid authorization format"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "invalid authorization format"},
		{"bad signature", "Bearer " + foreign, http.StatusUnauthorized, "invalid or expired token"},
		{"valid", "Bearer " + valid, http.StatusOK, ""},
	}

	h := JWTAuth(testSecret)(http.HandlerFunc(echoUserID))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/logs/1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			var body map[string]any
			json.NewDecoder(rec.Body).Decode(&body)
			if tt.wantError != "" && body["error"] != tt.wantError {
				t.Errorf("expected error %q, got %v", tt.wantError, body["error"])
			}
			if tt.wantError == "" && body["id"] != float64(7) {
				t.Errorf("expected user 7 in context, got %v", body["id"])
			}
		})
	}
}

func TestOptionalJWTAuth(t *testing.T) {
	h := OptionalJWTAuth(testSecret)(http.HandlerFunc(echoUserID))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	var body map[string]any
	json.NewDecoder(rec.Body).Decode(&body)
	if rec.Code != http.StatusOK || body["ok"] != false {
		t.Errorf("expected anonymous pass-through, got %d %v", rec.Code, body)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a bad token, got %d", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	defer rl.Stop()
	h := rl.Middleware(http.HandlerFunc(okHandler))

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected burst of 2 then 429, got %v", codes)
	}

	// Another client has its own budget.
	req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected second client allowed, got %d", rec.Code)
	}
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.limiterFor("10.0.0.1")

	now = now.Add(visitorTTL + time.Second)
	rl.evictIdle()

	if len(rl.visitors) != 0 {
		t.Errorf("expected idle visitor evicted, got %d", len(rl.visitors))
	}
	rl.Stop()
}

type recordedRequest struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	requests []recordedRequest
}

func (f *fakeRecorder) RecordRequest(method, route string, status int, _ time.Duration) {
	f.requests = append(f.requests, recordedRequest{method, route, status})
}
func (f *fakeRecorder) RecordAnalysis(string) {}
func (f *fakeRecorder) RecordIngredients(int) {}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	rec := &fakeRecorder{}

	r := chi.NewRouter()
	r.Use(Logging(logger, rec))
	r.With(JWTAuth(testSecret)).Get("/logs/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	token, _ := crypto.GenerateToken(9, "", testSecret, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/logs/5", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON log line, got %q", buf.String())
	}
	if entry["level"] != "WARN" || entry["status"] != float64(404) || entry["path"] != "/logs/5" {
		t.Errorf("unexpected log entry %v", entry)
	}
	if entry["user_id"] != float64(9) {
		t.Errorf("expected user_id 9, got %v", entry["user_id"])
	}

	if len(rec.requests) != 1 || rec.requests[0].route != "/logs/{id}" || rec.requests[0].status != 404 {
		t.Errorf("unexpected recorded requests %+v", rec.requests)
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "internal server error") {
		t.Errorf("unexpected body %q", body)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Error("expected the panic to be logged")
	}
}
