package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"warden/contexts/trust-safety/appeal-service/application/queries"
	appealerrors "warden/contexts/trust-safety/appeal-service/domain/errors"
	appealhttp "warden/contexts/trust-safety/appeal-service/transport/http"
)

func writeAppealError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, appealhttp.ErrorResponse{Code: code, Message: message})
}

func writeAppealDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appealerrors.ErrInvalidRequest):
		writeAppealError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, appealerrors.ErrAppealNotFound),
		errors.Is(err, appealerrors.ErrViolationNotFound):
		writeAppealError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, appealerrors.ErrNotViolationOwner):
		writeAppealError(w, http.StatusForbidden, "not_violation_owner", err.Error())
	case errors.Is(err, appealerrors.ErrAppealWindowClosed):
		writeAppealError(w, http.StatusUnprocessableEntity, "appeal_window_closed", err.Error())
	case errors.Is(err, appealerrors.ErrAppealOutstanding),
		errors.Is(err, appealerrors.ErrAppealAlreadyResolved),
		errors.Is(err, appealerrors.ErrInvalidTransition),
		errors.Is(err, appealerrors.ErrIdempotencyConflict):
		writeAppealError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, appealerrors.ErrIdempotencyKeyRequired):
		writeAppealError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	case errors.Is(err, appealerrors.ErrDependencyUnavailable):
		writeAppealError(w, http.StatusServiceUnavailable, "dependency_unavailable", err.Error())
	default:
		writeAppealError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleSubmitAppeal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req appealhttp.SubmitAppealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppealError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.appeals.Handler.SubmitAppealHandler(r.Context(), userID, req)
	if err != nil {
		writeAppealDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetAppeal(w http.ResponseWriter, r *http.Request) {
	appealID := r.PathValue("appeal_id")
	resp, err := s.appeals.Handler.GetAppealHandler(r.Context(), appealID)
	if err != nil {
		writeAppealDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAppeals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	listQuery := queries.ListAppealsQuery{
		UserID: query.Get("user_id"),
		Status: query.Get("status"),
	}

	// Non-moderators may only list their own appeals.
	if strings.TrimSpace(r.Header.Get("Authorization")) != "" {
		if _, ok := s.requireModerator(w, r); !ok {
			return
		}
	} else {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		listQuery.UserID = userID
	}

	if limitRaw := query.Get("limit"); limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeAppealError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		listQuery.Limit = limit
	}
	if offsetRaw := query.Get("offset"); offsetRaw != "" {
		offset, err := strconv.Atoi(offsetRaw)
		if err != nil {
			writeAppealError(w, http.StatusBadRequest, "invalid_offset", "offset must be an integer")
			return
		}
		listQuery.Offset = offset
	}

	resp, err := s.appeals.Handler.ListAppealsHandler(r.Context(), listQuery)
	if err != nil {
		writeAppealDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartAppealReview(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := s.requireModerator(w, r)
	if !ok {
		return
	}

	appealID := r.PathValue("appeal_id")
	resp, err := s.appeals.Handler.StartReviewHandler(r.Context(), appealID, reviewerID)
	if err != nil {
		writeAppealDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolveAppeal(w http.ResponseWriter, r *http.Request) {
	moderatorID, ok := s.requireModerator(w, r)
	if !ok {
		return
	}

	var req appealhttp.ResolveAppealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppealError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	appealID := r.PathValue("appeal_id")
	idempotencyKey := r.Header.Get("Idempotency-Key")

	resp, err := s.appeals.Handler.ResolveAppealHandler(r.Context(), appealID, moderatorID, idempotencyKey, req)
	if err != nil {
		writeAppealDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
