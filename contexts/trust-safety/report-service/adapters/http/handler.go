package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"warden/contexts/trust-safety/report-service/application/commands"
	"warden/contexts/trust-safety/report-service/application/queries"
	"warden/contexts/trust-safety/report-service/domain/entities"
	httptransport "warden/contexts/trust-safety/report-service/transport/http"
)

type Handler struct {
	Create  commands.CreateReportUseCase
	Update  commands.UpdateStatusUseCase
	Queries queries.QueryUseCase
	Logger  *slog.Logger
}

// CreateReportHandler godoc
// @Summary Report a whisper or comment
// @Tags reports
// @Accept json
// @Produce json
// @Success 201 {object} http.ReportResponse
// @Router /v1/reports [post]
func (h Handler) CreateReportHandler(ctx context.Context, reporterID string, req httptransport.CreateReportRequest) (httptransport.ReportResponse, error) {
	report, err := h.Create.Execute(ctx, commands.CreateReportCommand{
		TargetType:     entities.TargetType(strings.ToLower(strings.TrimSpace(req.TargetType))),
		TargetID:       req.TargetID,
		TargetAuthorID: req.TargetAuthorID,
		ReporterID:     reporterID,
		Category:       req.Category,
		Reason:         req.Reason,
		Evidence:       req.Evidence,
	})
	if err != nil {
		return httptransport.ReportResponse{}, err
	}
	return httptransport.ReportResponse{
		Status:    "success",
		Data:      reportBody(report),
		Timestamp: timestamp(),
	}, nil
}

// GetReportHandler godoc
// @Summary Get a report
// @Tags reports
// @Produce json
// @Param report_id path string true "Report ID"
// @Success 200 {object} http.ReportResponse
// @Router /v1/reports/{report_id} [get]
func (h Handler) GetReportHandler(ctx context.Context, reportID string) (httptransport.ReportResponse, error) {
	report, err := h.Queries.GetReport(ctx, reportID)
	if err != nil {
		return httptransport.ReportResponse{}, err
	}
	return httptransport.ReportResponse{
		Status:    "success",
		Data:      reportBody(report),
		Timestamp: timestamp(),
	}, nil
}

// ListReportsHandler godoc
// @Summary List reports
// @Tags reports
// @Produce json
// @Param target_id query string false "Target ID"
// @Param status query string false "Status"
// @Param category query string false "Category"
// @Param priority query string false "Priority"
// @Success 200 {object} http.ReportListResponse
// @Router /v1/reports [get]
func (h Handler) ListReportsHandler(ctx context.Context, query queries.ListReportsQuery) (httptransport.ReportListResponse, error) {
	reports, err := h.Queries.ListReports(ctx, query)
	if err != nil {
		return httptransport.ReportListResponse{}, err
	}
	resp := httptransport.ReportListResponse{Status: "success", Timestamp: timestamp()}
	resp.Data.Items = make([]httptransport.ReportBody, 0, len(reports))
	for _, report := range reports {
		resp.Data.Items = append(resp.Data.Items, reportBody(report))
	}
	return resp, nil
}

// UpdateStatusHandler godoc
// @Summary Update a report's review status
// @Tags reports
// @Accept json
// @Produce json
// @Param report_id path string true "Report ID"
// @Param Idempotency-Key header string true "Idempotency key"
// @Success 200 {object} http.ReportResponse
// @Router /v1/reports/{report_id}/status [patch]
func (h Handler) UpdateStatusHandler(ctx context.Context, reportID string, reviewerID string, idempotencyKey string, req httptransport.UpdateStatusRequest) (httptransport.ReportResponse, error) {
	report, err := h.Update.Execute(ctx, commands.UpdateStatusCommand{
		ReportID:       reportID,
		NewStatus:      req.Status,
		ReviewerID:     reviewerID,
		Resolution:     req.Resolution,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.ReportResponse{}, err
	}
	return httptransport.ReportResponse{
		Status:    "success",
		Data:      reportBody(report),
		Timestamp: timestamp(),
	}, nil
}

// TargetStatsHandler godoc
// @Summary Aggregate report stats for a target
// @Tags reports
// @Produce json
// @Param target_id path string true "Target ID"
// @Success 200 {object} http.TargetStatsResponse
// @Router /v1/reports/targets/{target_id}/stats [get]
func (h Handler) TargetStatsHandler(ctx context.Context, targetID string) (httptransport.TargetStatsResponse, error) {
	stats, err := h.Queries.TargetStats(ctx, targetID)
	if err != nil {
		return httptransport.TargetStatsResponse{}, err
	}
	resp := httptransport.TargetStatsResponse{Status: "success", Timestamp: timestamp()}
	resp.Data.TargetID = stats.TargetID
	resp.Data.Total = stats.Total
	resp.Data.UniqueReporters = stats.UniqueReporters
	resp.Data.ByCategory = map[string]int{}
	for category, count := range stats.ByCategory {
		resp.Data.ByCategory[string(category)] = count
	}
	resp.Data.ByPriority = map[string]int{}
	for priority, count := range stats.ByPriority {
		resp.Data.ByPriority[string(priority)] = count
	}
	resp.Data.ByStatus = map[string]int{}
	for status, count := range stats.ByStatus {
		resp.Data.ByStatus[string(status)] = count
	}
	resp.Data.EscalationRate = stats.EscalationRate
	return resp, nil
}

func reportBody(report entities.Report) httptransport.ReportBody {
	body := httptransport.ReportBody{
		ReportID:         report.ID,
		TargetType:       string(report.TargetType),
		TargetID:         report.TargetID,
		ReporterID:       report.ReporterID,
		ReporterLevel:    report.ReporterLevel,
		Category:         string(report.Category),
		Priority:         string(report.Priority),
		Status:           string(report.Status),
		Reason:           report.Reason,
		Evidence:         report.Evidence,
		ReputationWeight: report.ReputationWeight,
		ReportCount:      report.ReportCount,
		EscalatedCount:   report.EscalatedCount,
		CreatedAt:        report.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        report.UpdatedAt.UTC().Format(time.RFC3339),
		ReviewedBy:       report.ReviewedBy,
		Resolution:       report.Resolution,
	}
	if report.ReviewedAt != nil {
		body.ReviewedAt = report.ReviewedAt.UTC().Format(time.RFC3339)
	}
	return body
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
