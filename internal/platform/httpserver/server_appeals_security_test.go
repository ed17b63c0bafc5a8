package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSubmitAppealRequiresUser(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/appeals",
		strings.NewReader(`{"whisper_id":"whisper-1","violation_id":"violation-1","reason":"wrong call"}`))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSubmitAppealRejectsForeignViolation(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/appeals",
		strings.NewReader(`{"whisper_id":"whisper-1","violation_id":"violation-1","reason":"not mine"}`))
	req.Header.Set("X-User-Id", "someone_else")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAppealReviewRequiresModerator(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/v1/appeals/appeal-1/review", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d body=%s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/appeals/appeal-1/review", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, "user_123", "user"))
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user role, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAppealLifecycleOverHTTP(t *testing.T) {
	server := newTestServer()

	submit := httptest.NewRequest(http.MethodPost, "/v1/appeals",
		strings.NewReader(`{"whisper_id":"whisper-1","violation_id":"violation-1","reason":"the detection was wrong"}`))
	submit.Header.Set("X-User-Id", "user_123")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, submit)
	if rr.Code != http.StatusCreated {
		t.Fatalf("submit appeal: %d body=%s", rr.Code, rr.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	data := payload["data"].(map[string]any)
	appealID := data["appeal_id"].(string)
	if data["status"] != "pending" {
		t.Fatalf("expected pending appeal, got %#v", data["status"])
	}

	moderator := testToken(t, "mod-1", "moderator")

	review := httptest.NewRequest(http.MethodPost, "/v1/appeals/"+appealID+"/review", nil)
	review.Header.Set("Authorization", "Bearer "+moderator)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, review)
	if rr.Code != http.StatusOK {
		t.Fatalf("start review: %d body=%s", rr.Code, rr.Body.String())
	}

	resolve := httptest.NewRequest(http.MethodPost, "/v1/appeals/"+appealID+"/resolution",
		strings.NewReader(`{"action":"approve","reason":"overturned","reputation_adjustment":10}`))
	resolve.Header.Set("Authorization", "Bearer "+moderator)
	resolve.Header.Set("Idempotency-Key", "idem-http-1")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, resolve)
	if rr.Code != http.StatusOK {
		t.Fatalf("resolve appeal: %d body=%s", rr.Code, rr.Body.String())
	}

	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	data = payload["data"].(map[string]any)
	if data["status"] != "approved" {
		t.Fatalf("expected approved appeal, got %#v", data["status"])
	}
	resolution, ok := data["resolution"].(map[string]any)
	if !ok || resolution["moderator_id"] != "mod-1" {
		t.Fatalf("expected resolution by mod-1, got %#v", data["resolution"])
	}
}

func TestResolveAppealRequiresIdempotencyKeyHeader(t *testing.T) {
	server := newTestServer()

	submit := httptest.NewRequest(http.MethodPost, "/v1/appeals",
		strings.NewReader(`{"whisper_id":"whisper-1","violation_id":"violation-1","reason":"wrong call"}`))
	submit.Header.Set("X-User-Id", "user_123")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, submit)
	if rr.Code != http.StatusCreated {
		t.Fatalf("submit appeal: %d body=%s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	appealID := payload["data"].(map[string]any)["appeal_id"].(string)

	resolve := httptest.NewRequest(http.MethodPost, "/v1/appeals/"+appealID+"/resolution",
		strings.NewReader(`{"action":"approve","reputation_adjustment":10}`))
	resolve.Header.Set("Authorization", "Bearer "+testToken(t, "mod-1", "moderator"))
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, resolve)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestListAppealsScopesNonModeratorsToOwnAppeals(t *testing.T) {
	server := newTestServer()

	submit := httptest.NewRequest(http.MethodPost, "/v1/appeals",
		strings.NewReader(`{"whisper_id":"whisper-1","violation_id":"violation-1","reason":"wrong call"}`))
	submit.Header.Set("X-User-Id", "user_123")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, submit)
	if rr.Code != http.StatusCreated {
		t.Fatalf("submit appeal: %d body=%s", rr.Code, rr.Body.String())
	}

	// Another user asking for user_123's appeals only sees their own (none).
	list := httptest.NewRequest(http.MethodGet, "/v1/appeals?user_id=user_123", nil)
	list.Header.Set("X-User-Id", "user_456")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, list)
	if rr.Code != http.StatusOK {
		t.Fatalf("list appeals: %d body=%s", rr.Code, rr.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	items := payload["data"].(map[string]any)["items"].([]any)
	if len(items) != 0 {
		t.Fatalf("expected no foreign appeals, got %d", len(items))
	}
}
