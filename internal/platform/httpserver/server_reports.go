package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"warden/contexts/trust-safety/report-service/application/queries"
	reporterrors "warden/contexts/trust-safety/report-service/domain/errors"
	reporthttp "warden/contexts/trust-safety/report-service/transport/http"
)

func writeReportError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, reporthttp.ErrorResponse{Code: code, Message: message})
}

func writeReportDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reporterrors.ErrInvalidRequest):
		writeReportError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, reporterrors.ErrSelfReport):
		writeReportError(w, http.StatusUnprocessableEntity, "self_report", err.Error())
	case errors.Is(err, reporterrors.ErrReporterBanned):
		writeReportError(w, http.StatusForbidden, "reporter_banned", err.Error())
	case errors.Is(err, reporterrors.ErrReportNotFound):
		writeReportError(w, http.StatusNotFound, "report_not_found", err.Error())
	case errors.Is(err, reporterrors.ErrInvalidTransition),
		errors.Is(err, reporterrors.ErrIdempotencyConflict):
		writeReportError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, reporterrors.ErrIdempotencyKeyRequired):
		writeReportError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	case errors.Is(err, reporterrors.ErrDependencyUnavailable):
		writeReportError(w, http.StatusServiceUnavailable, "dependency_unavailable", err.Error())
	default:
		writeReportError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleCreateWhisperReport(w http.ResponseWriter, r *http.Request) {
	s.createReport(w, r, "whisper")
}

func (s *Server) handleCreateCommentReport(w http.ResponseWriter, r *http.Request) {
	s.createReport(w, r, "comment")
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request, targetType string) {
	reporterID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req reporthttp.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReportError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	req.TargetType = targetType

	resp, err := s.reports.Handler.CreateReportHandler(r.Context(), reporterID, req)
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	reportID := r.PathValue("report_id")
	resp, err := s.reports.Handler.GetReportHandler(r.Context(), reportID)
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireModerator(w, r); !ok {
		return
	}

	query := r.URL.Query()
	listQuery := queries.ListReportsQuery{
		TargetID:   query.Get("target_id"),
		ReporterID: query.Get("reporter_id"),
		Status:     query.Get("status"),
		Category:   query.Get("category"),
		Priority:   query.Get("priority"),
	}

	if limitRaw := query.Get("limit"); limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeReportError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		listQuery.Limit = limit
	}
	if offsetRaw := query.Get("offset"); offsetRaw != "" {
		offset, err := strconv.Atoi(offsetRaw)
		if err != nil {
			writeReportError(w, http.StatusBadRequest, "invalid_offset", "offset must be an integer")
			return
		}
		listQuery.Offset = offset
	}
	if fromRaw := query.Get("from"); fromRaw != "" {
		from, err := time.Parse(time.RFC3339, fromRaw)
		if err != nil {
			writeReportError(w, http.StatusBadRequest, "invalid_from", "from must be an RFC3339 timestamp")
			return
		}
		listQuery.From = from
	}
	if toRaw := query.Get("to"); toRaw != "" {
		to, err := time.Parse(time.RFC3339, toRaw)
		if err != nil {
			writeReportError(w, http.StatusBadRequest, "invalid_to", "to must be an RFC3339 timestamp")
			return
		}
		listQuery.To = to
	}

	resp, err := s.reports.Handler.ListReportsHandler(r.Context(), listQuery)
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateReportStatus(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := s.requireModerator(w, r)
	if !ok {
		return
	}

	var req reporthttp.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReportError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	reportID := r.PathValue("report_id")
	idempotencyKey := r.Header.Get("Idempotency-Key")

	resp, err := s.reports.Handler.UpdateStatusHandler(r.Context(), reportID, reviewerID, idempotencyKey, req)
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTargetReportStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireModerator(w, r); !ok {
		return
	}

	targetID := r.PathValue("target_id")
	resp, err := s.reports.Handler.TargetStatsHandler(r.Context(), targetID)
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
