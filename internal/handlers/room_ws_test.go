// internal/handlers/room_ws_test.go
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/momentchat/moment/internal/auth"
	"github.com/momentchat/moment/internal/rooms"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// TestRoomWSPathValidation ensures malformed paths are rejected before the
// websocket upgrade is attempted.
func TestRoomWSPathValidation(t *testing.T) {
	logger := testLogger()
	handler := RoomWSHandler(logger, rooms.NewHub(logger))

	cases := []struct {
		name string
		path string
	}{
		{"missing room_id", "/room/ws/chat"},
		{"empty room_type", "/room/ws//5"},
		{"non-numeric room_id", "/room/ws/chat/abc"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", tc.path, nil)
		w := httptest.NewRecorder()
		handler(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d, body=%s", tc.name, w.Code, w.Body.String())
		}
	}
}

// TestRoomWSRequiresUpgrade ensures a well-formed path on a plain HTTP
// request fails the websocket handshake instead of hanging.
func TestRoomWSRequiresUpgrade(t *testing.T) {
	logger := testLogger()
	handler := RoomWSHandler(logger, rooms.NewHub(logger))

	req := httptest.NewRequest("GET", "/room/ws/chat/1", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusUpgradeRequired {
		t.Fatalf("expected 426 upgrade required, got %d, body=%s", w.Code, w.Body.String())
	}
}

// TestResolveUserDegradesToAnonymous covers every identity fallback: no
// token, a garbage token, and a valid token with no database attached.
func TestResolveUserDegradesToAnonymous(t *testing.T) {
	auth.Init()
	logger := testLogger()
	ctx := context.Background()

	id, name, anon := resolveUser(ctx, logger, "")
	if !anon || id != 0 || name != anonymousName {
		t.Fatalf("empty token: expected anonymous, got id=%d name=%q anon=%v", id, name, anon)
	}

	id, name, anon = resolveUser(ctx, logger, "not-a-jwt")
	if !anon || id != 0 || name != anonymousName {
		t.Fatalf("garbage token: expected anonymous, got id=%d name=%q anon=%v", id, name, anon)
	}

	// A valid token still resolves anonymous when no database is attached.
	token, err := auth.CreateJWT(42)
	if err != nil {
		t.Fatalf("CreateJWT failed: %v", err)
	}
	id, name, anon = resolveUser(ctx, logger, token)
	if !anon || id != 0 || name != anonymousName {
		t.Fatalf("valid token without db: expected anonymous, got id=%d name=%q anon=%v", id, name, anon)
	}
}

// TestHealthHandler checks the liveness endpoint body and method guard.
func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	HealthHandler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 ok, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected json content type, got %q", ct)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body["status"])
	}
	if body["database"] != false {
		t.Fatalf("expected database=false without a pool, got %v", body["database"])
	}

	req2 := httptest.NewRequest("POST", "/api/health", nil)
	w2 := httptest.NewRecorder()
	HealthHandler(w2, req2)
	if w2.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for POST, got %d", w2.Code)
	}
}
