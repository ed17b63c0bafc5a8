package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnalyzeWhisperRejectsInvalidJSON(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/analysis/whispers", strings.NewReader("{not json"))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAnalyzeWhisperRejectsEmptyContent(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/analysis/whispers",
		strings.NewReader(`{"user_id":"user_123","whisper_id":"whisper-1","content":"   "}`))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAnalyzeWhisperReturnsVerdict(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/v1/analysis/whispers",
		strings.NewReader(`{"user_id":"user_123","whisper_id":"whisper-1","content":"just sharing a normal thought today"}`))

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if payload["status"] != "success" {
		t.Fatalf("expected success status, got %#v", payload["status"])
	}
	data, ok := payload["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected object data payload, got %#v", payload["data"])
	}
	if _, ok := data["spam_score"]; !ok {
		t.Fatalf("expected spam_score in response data: %#v", data)
	}
	if _, ok := data["suggested_action"]; !ok {
		t.Fatalf("expected suggested_action in response data: %#v", data)
	}
}
