package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	reputationerrors "warden/contexts/trust-safety/reputation-service/domain/errors"
	reputationhttp "warden/contexts/trust-safety/reputation-service/transport/http"
)

func writeReputationError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, reputationhttp.ErrorResponse{Code: code, Message: message})
}

func writeReputationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reputationerrors.ErrInvalidRequest),
		errors.Is(err, reputationerrors.ErrPermanentHasEndDate),
		errors.Is(err, reputationerrors.ErrTemporaryNeedsEndDate):
		writeReputationError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, reputationerrors.ErrReputationNotFound),
		errors.Is(err, reputationerrors.ErrViolationNotFound),
		errors.Is(err, reputationerrors.ErrSuspensionNotFound):
		writeReputationError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, reputationerrors.ErrDependencyUnavailable):
		writeReputationError(w, http.StatusServiceUnavailable, "dependency_unavailable", err.Error())
	default:
		writeReputationError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleGetReputation(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.PathValue("user_id"))
	if userID == "" {
		writeReputationError(w, http.StatusBadRequest, "invalid_request", "user_id is required")
		return
	}

	resp, err := s.reputation.Handler.GetReputationHandler(r.Context(), userID)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListViolations(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.PathValue("user_id"))
	if userID == "" {
		writeReputationError(w, http.StatusBadRequest, "invalid_request", "user_id is required")
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	resp, err := s.reputation.Handler.ListViolationsHandler(r.Context(), userID, activeOnly)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecordViolation(w http.ResponseWriter, r *http.Request) {
	moderatorID, ok := s.requireModerator(w, r)
	if !ok {
		return
	}

	var req reputationhttp.RecordViolationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReputationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	userID := r.PathValue("user_id")
	resp, err := s.reputation.Handler.RecordViolationHandler(r.Context(), userID, moderatorID, req)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleSuspendUser(w http.ResponseWriter, r *http.Request) {
	moderatorID, ok := s.requireModerator(w, r)
	if !ok {
		return
	}

	var req reputationhttp.SuspendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReputationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	userID := r.PathValue("user_id")
	resp, err := s.reputation.Handler.SuspendHandler(r.Context(), userID, moderatorID, req)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLiftSuspension(w http.ResponseWriter, r *http.Request) {
	moderatorID, ok := s.requireModerator(w, r)
	if !ok {
		return
	}

	suspensionID := r.PathValue("suspension_id")
	resp, err := s.reputation.Handler.LiftSuspensionHandler(r.Context(), suspensionID, moderatorID)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
