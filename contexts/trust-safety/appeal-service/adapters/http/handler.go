package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"warden/contexts/trust-safety/appeal-service/application/commands"
	"warden/contexts/trust-safety/appeal-service/application/queries"
	"warden/contexts/trust-safety/appeal-service/domain/entities"
	httptransport "warden/contexts/trust-safety/appeal-service/transport/http"
)

type Handler struct {
	Submit  commands.SubmitAppealUseCase
	Review  commands.StartReviewUseCase
	Resolve commands.ResolveAppealUseCase
	Queries queries.QueryUseCase
	Logger  *slog.Logger
}

// SubmitAppealHandler godoc
// @Summary Appeal a violation
// @Tags appeals
// @Accept json
// @Produce json
// @Success 201 {object} http.AppealResponse
// @Router /v1/appeals [post]
func (h Handler) SubmitAppealHandler(ctx context.Context, userID string, req httptransport.SubmitAppealRequest) (httptransport.AppealResponse, error) {
	appeal, err := h.Submit.Execute(ctx, commands.SubmitAppealCommand{
		UserID:      userID,
		WhisperID:   req.WhisperID,
		ViolationID: req.ViolationID,
		Reason:      req.Reason,
		Evidence:    req.Evidence,
	})
	if err != nil {
		return httptransport.AppealResponse{}, err
	}
	return httptransport.AppealResponse{
		Status:    "success",
		Data:      appealBody(appeal),
		Timestamp: timestamp(),
	}, nil
}

// StartReviewHandler godoc
// @Summary Claim an appeal for review
// @Tags appeals
// @Produce json
// @Param appeal_id path string true "Appeal ID"
// @Success 200 {object} http.AppealResponse
// @Router /v1/appeals/{appeal_id}/review [post]
func (h Handler) StartReviewHandler(ctx context.Context, appealID string, reviewerID string) (httptransport.AppealResponse, error) {
	appeal, err := h.Review.Execute(ctx, commands.StartReviewCommand{
		AppealID:   appealID,
		ReviewerID: reviewerID,
	})
	if err != nil {
		return httptransport.AppealResponse{}, err
	}
	return httptransport.AppealResponse{
		Status:    "success",
		Data:      appealBody(appeal),
		Timestamp: timestamp(),
	}, nil
}

// ResolveAppealHandler godoc
// @Summary Resolve an appeal
// @Tags appeals
// @Accept json
// @Produce json
// @Param appeal_id path string true "Appeal ID"
// @Param Idempotency-Key header string true "Idempotency key"
// @Success 200 {object} http.AppealResponse
// @Router /v1/appeals/{appeal_id}/resolution [post]
func (h Handler) ResolveAppealHandler(ctx context.Context, appealID string, moderatorID string, idempotencyKey string, req httptransport.ResolveAppealRequest) (httptransport.AppealResponse, error) {
	appeal, err := h.Resolve.Execute(ctx, commands.ResolveAppealCommand{
		AppealID:             appealID,
		ModeratorID:          moderatorID,
		Action:               req.Action,
		Reason:               req.Reason,
		ReputationAdjustment: req.ReputationAdjustment,
		IdempotencyKey:       idempotencyKey,
	})
	if err != nil {
		return httptransport.AppealResponse{}, err
	}
	return httptransport.AppealResponse{
		Status:    "success",
		Data:      appealBody(appeal),
		Timestamp: timestamp(),
	}, nil
}

// GetAppealHandler godoc
// @Summary Get an appeal
// @Tags appeals
// @Produce json
// @Param appeal_id path string true "Appeal ID"
// @Success 200 {object} http.AppealResponse
// @Router /v1/appeals/{appeal_id} [get]
func (h Handler) GetAppealHandler(ctx context.Context, appealID string) (httptransport.AppealResponse, error) {
	appeal, err := h.Queries.GetAppeal(ctx, appealID)
	if err != nil {
		return httptransport.AppealResponse{}, err
	}
	return httptransport.AppealResponse{
		Status:    "success",
		Data:      appealBody(appeal),
		Timestamp: timestamp(),
	}, nil
}

// ListAppealsHandler godoc
// @Summary List appeals
// @Tags appeals
// @Produce json
// @Param user_id query string false "User ID"
// @Param status query string false "Status"
// @Success 200 {object} http.AppealListResponse
// @Router /v1/appeals [get]
func (h Handler) ListAppealsHandler(ctx context.Context, query queries.ListAppealsQuery) (httptransport.AppealListResponse, error) {
	appeals, err := h.Queries.ListAppeals(ctx, query)
	if err != nil {
		return httptransport.AppealListResponse{}, err
	}
	resp := httptransport.AppealListResponse{Status: "success", Timestamp: timestamp()}
	resp.Data.Items = make([]httptransport.AppealBody, 0, len(appeals))
	for _, appeal := range appeals {
		resp.Data.Items = append(resp.Data.Items, appealBody(appeal))
	}
	return resp, nil
}

func appealBody(appeal entities.Appeal) httptransport.AppealBody {
	body := httptransport.AppealBody{
		AppealID:    appeal.ID,
		UserID:      appeal.UserID,
		WhisperID:   appeal.WhisperID,
		ViolationID: appeal.ViolationID,
		Reason:      appeal.Reason,
		Evidence:    appeal.Evidence,
		Status:      string(appeal.Status),
		SubmittedAt: appeal.SubmittedAt.UTC().Format(time.RFC3339),
		ReviewedBy:  appeal.ReviewedBy,
	}
	if appeal.ReviewedAt != nil {
		body.ReviewedAt = appeal.ReviewedAt.UTC().Format(time.RFC3339)
	}
	if appeal.Resolution != nil {
		body.Resolution = &httptransport.ResolutionBody{
			Action:               string(appeal.Resolution.Action),
			Reason:               appeal.Resolution.Reason,
			ModeratorID:          appeal.Resolution.ModeratorID,
			ReputationAdjustment: appeal.Resolution.ReputationAdjustment,
		}
	}
	return body
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
