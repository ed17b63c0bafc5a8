package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	analysiserrors "warden/contexts/trust-safety/content-analysis-service/domain/errors"
	analysishttp "warden/contexts/trust-safety/content-analysis-service/transport/http"
)

func writeAnalysisError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, analysishttp.ErrorEnvelope{
		Status:    "error",
		Error:     analysishttp.ErrorBody{Code: code, Message: message},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeAnalysisDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysiserrors.ErrEmptyContent):
		writeAnalysisError(w, http.StatusUnprocessableEntity, "empty_content", err.Error())
	case errors.Is(err, analysiserrors.ErrInvalidRequest):
		writeAnalysisError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, analysiserrors.ErrDependencyUnavailable):
		writeAnalysisError(w, http.StatusServiceUnavailable, "dependency_unavailable", err.Error())
	default:
		writeAnalysisError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleAnalyzeWhisper(w http.ResponseWriter, r *http.Request) {
	var req analysishttp.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAnalysisError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.analysis.Handler.AnalyzeHandler(r.Context(), req)
	if err != nil {
		writeAnalysisDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClassifyWhisper(w http.ResponseWriter, r *http.Request) {
	var req analysishttp.ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAnalysisError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.analysis.Handler.ClassifyHandler(r.Context(), req)
	if err != nil {
		writeAnalysisDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
