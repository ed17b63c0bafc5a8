package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"warden/contexts/trust-safety/reputation-service/application"
	"warden/contexts/trust-safety/reputation-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/reputation-service/domain/errors"
	"warden/contexts/trust-safety/reputation-service/ports"
	httptransport "warden/contexts/trust-safety/reputation-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// GetReputationHandler godoc
// @Summary Get a user's reputation
// @Tags reputation
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} http.ReputationResponse
// @Router /v1/reputation/{user_id} [get]
func (h Handler) GetReputationHandler(ctx context.Context, userID string) (httptransport.ReputationResponse, error) {
	reputation, err := h.Service.Get(ctx, userID)
	if err != nil {
		return httptransport.ReputationResponse{}, err
	}

	resp := httptransport.ReputationResponse{Status: "success", Timestamp: timestamp()}
	resp.Data.UserID = reputation.UserID
	resp.Data.Score = reputation.Score
	resp.Data.Level = string(reputation.Level)
	resp.Data.WhisperCount = reputation.WhisperCount
	resp.Data.ApprovedCount = reputation.ApprovedCount
	resp.Data.FlaggedCount = reputation.FlaggedCount
	resp.Data.RejectedCount = reputation.RejectedCount
	resp.Data.ViolationHistory = append([]string{}, reputation.ViolationHistory...)
	resp.Data.Weight = h.Service.Standing.WeightForLevel(reputation.Level)
	resp.Data.CreatedAt = reputation.CreatedAt.UTC().Format(time.RFC3339)
	resp.Data.UpdatedAt = reputation.UpdatedAt.UTC().Format(time.RFC3339)
	return resp, nil
}

// ListViolationsHandler godoc
// @Summary List a user's violations
// @Tags reputation
// @Produce json
// @Param user_id path string true "User ID"
// @Param active query bool false "Only active violations"
// @Success 200 {object} http.ViolationListResponse
// @Router /v1/reputation/{user_id}/violations [get]
func (h Handler) ListViolationsHandler(ctx context.Context, userID string, activeOnly bool) (httptransport.ViolationListResponse, error) {
	violations, err := h.Service.ListViolations(ctx, userID, activeOnly)
	if err != nil {
		return httptransport.ViolationListResponse{}, err
	}

	resp := httptransport.ViolationListResponse{Status: "success", Timestamp: timestamp()}
	resp.Data.Items = make([]httptransport.ViolationBody, 0, len(violations))
	for _, violation := range violations {
		resp.Data.Items = append(resp.Data.Items, violationBody(violation))
	}
	return resp, nil
}

// RecordViolationHandler godoc
// @Summary Record a violation against a user
// @Tags reputation
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} http.ViolationResponse
// @Router /v1/reputation/{user_id}/violations [post]
func (h Handler) RecordViolationHandler(ctx context.Context, userID string, moderatorID string, req httptransport.RecordViolationRequest) (httptransport.ViolationResponse, error) {
	violation, err := h.Service.RecordViolation(ctx, ports.RecordViolationInput{
		UserID:        strings.TrimSpace(userID),
		WhisperID:     strings.TrimSpace(req.WhisperID),
		ViolationType: strings.TrimSpace(req.ViolationType),
		Reason:        req.Reason,
		Severity:      req.Severity,
		ReportCount:   req.ReportCount,
		ModeratorID:   strings.TrimSpace(moderatorID),
	})
	if err != nil {
		return httptransport.ViolationResponse{}, err
	}
	return httptransport.ViolationResponse{
		Status:    "success",
		Data:      violationBody(violation),
		Timestamp: timestamp(),
	}, nil
}

// SuspendHandler godoc
// @Summary Suspend a user
// @Tags reputation
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} http.SuspensionResponse
// @Router /v1/reputation/{user_id}/suspensions [post]
func (h Handler) SuspendHandler(ctx context.Context, userID string, moderatorID string, req httptransport.SuspendRequest) (httptransport.SuspensionResponse, error) {
	var endDate *time.Time
	if strings.TrimSpace(req.EndDate) != "" {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndDate))
		if err != nil {
			return httptransport.SuspensionResponse{}, domainerrors.ErrInvalidRequest
		}
		endDate = &parsed
	}

	suspension, err := h.Service.Suspend(ctx, ports.SuspendInput{
		UserID:      strings.TrimSpace(userID),
		Type:        req.Type,
		BanType:     req.BanType,
		Reason:      req.Reason,
		ModeratorID: strings.TrimSpace(moderatorID),
		EndDate:     endDate,
	})
	if err != nil {
		return httptransport.SuspensionResponse{}, err
	}
	return httptransport.SuspensionResponse{
		Status:    "success",
		Data:      suspensionBody(suspension),
		Timestamp: timestamp(),
	}, nil
}

// LiftSuspensionHandler godoc
// @Summary Lift a suspension
// @Tags reputation
// @Produce json
// @Param suspension_id path string true "Suspension ID"
// @Success 200 {object} http.SuspensionResponse
// @Router /v1/reputation/suspensions/{suspension_id}/lift [post]
func (h Handler) LiftSuspensionHandler(ctx context.Context, suspensionID string, moderatorID string) (httptransport.SuspensionResponse, error) {
	suspension, err := h.Service.LiftSuspension(ctx, suspensionID, moderatorID)
	if err != nil {
		return httptransport.SuspensionResponse{}, err
	}
	return httptransport.SuspensionResponse{
		Status:    "success",
		Data:      suspensionBody(suspension),
		Timestamp: timestamp(),
	}, nil
}

func violationBody(violation entities.UserViolation) httptransport.ViolationBody {
	body := httptransport.ViolationBody{
		ViolationID:   violation.ID,
		UserID:        violation.UserID,
		WhisperID:     violation.WhisperID,
		ViolationType: violation.ViolationType,
		Reason:        violation.Reason,
		Severity:      string(violation.Severity),
		ReportCount:   violation.ReportCount,
		ModeratorID:   violation.ModeratorID,
		CreatedAt:     violation.CreatedAt.UTC().Format(time.RFC3339),
		Expired:       violation.Expired,
	}
	if violation.ExpiresAt != nil {
		body.ExpiresAt = violation.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return body
}

func suspensionBody(suspension entities.Suspension) httptransport.SuspensionBody {
	body := httptransport.SuspensionBody{
		SuspensionID: suspension.ID,
		UserID:       suspension.UserID,
		Type:         string(suspension.Type),
		BanType:      suspension.BanType,
		Reason:       suspension.Reason,
		ModeratorID:  suspension.ModeratorID,
		StartDate:    suspension.StartDate.UTC().Format(time.RFC3339),
		IsActive:     suspension.IsActive,
	}
	if suspension.EndDate != nil {
		body.EndDate = suspension.EndDate.UTC().Format(time.RFC3339)
	}
	return body
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
