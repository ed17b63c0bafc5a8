package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGetReputationDefaultsToStandard(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/reputation/user_123", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	data := payload["data"].(map[string]any)
	if data["user_id"] != "user_123" || data["level"] != "standard" {
		t.Fatalf("expected standard level for unknown user, got %#v", data)
	}
}

func TestRecordViolationRequiresModerator(t *testing.T) {
	server := newTestServer()
	body := `{"violation_type":"spam","reason":"repeated spam","severity":"medium"}`

	req := httptest.NewRequest(http.MethodPost, "/v1/reputation/user_123/violations", strings.NewReader(body))
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d body=%s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/reputation/user_123/violations", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testToken(t, "user_123", "user"))
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user role, got %d body=%s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/reputation/user_123/violations", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testToken(t, "mod-1", "moderator"))
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 for moderator, got %d body=%s", rr.Code, rr.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	data := payload["data"].(map[string]any)
	if data["moderator_id"] != "mod-1" {
		t.Fatalf("expected moderator attribution, got %#v", data["moderator_id"])
	}
}

func TestSuspendTemporaryRequiresEndDate(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/reputation/user_123/suspensions",
		strings.NewReader(`{"type":"temporary","reason":"spam wave"}`))
	req.Header.Set("Authorization", "Bearer "+testToken(t, "mod-1", "moderator"))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestLiftSuspensionUnknownReturnsNotFound(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/reputation/suspensions/missing/lift", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, "mod-1", "moderator"))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}
