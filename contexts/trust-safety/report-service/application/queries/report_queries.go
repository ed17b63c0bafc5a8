package queries

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"warden/contexts/trust-safety/report-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/report-service/domain/errors"
	"warden/contexts/trust-safety/report-service/ports"
)

type ListReportsQuery struct {
	TargetID   string
	ReporterID string
	Status     string
	Category   string
	Priority   string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

type QueryUseCase struct {
	Repository ports.Repository
	Logger     *slog.Logger
}

func (uc QueryUseCase) GetReport(ctx context.Context, reportID string) (entities.Report, error) {
	report, err := uc.Repository.GetReport(ctx, strings.TrimSpace(reportID))
	if err != nil {
		return entities.Report{}, fmt.Errorf("Failed to get report: %w", err)
	}
	if report == nil {
		return entities.Report{}, domainerrors.ErrReportNotFound
	}
	return *report, nil
}

func (uc QueryUseCase) ListReports(ctx context.Context, query ListReportsQuery) ([]entities.Report, error) {
	filter := ports.ReportFilter{
		TargetID:   strings.TrimSpace(query.TargetID),
		ReporterID: strings.TrimSpace(query.ReporterID),
		From:       query.From,
		To:         query.To,
		Limit:      query.Limit,
		Offset:     query.Offset,
	}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status, ok := entities.ParseStatus(raw)
		if !ok {
			return nil, domainerrors.ErrInvalidRequest
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(query.Category); raw != "" {
		category, ok := entities.ParseCategory(raw)
		if !ok {
			return nil, domainerrors.ErrInvalidRequest
		}
		filter.Category = category
	}
	if raw := strings.TrimSpace(query.Priority); raw != "" {
		priority := entities.Priority(strings.ToUpper(raw))
		if !entities.IsValidPriority(priority) {
			return nil, domainerrors.ErrInvalidRequest
		}
		filter.Priority = priority
	}
	items, err := uc.Repository.ListReports(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("Failed to list reports: %w", err)
	}
	return items, nil
}

// TargetStats aggregates the report pressure on one piece of content:
// per-category, per-priority and per-status counts plus the share of reports
// that escalated at least once.
func (uc QueryUseCase) TargetStats(ctx context.Context, targetID string) (entities.ReportStats, error) {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return entities.ReportStats{}, domainerrors.ErrInvalidRequest
	}
	reports, err := uc.Repository.ListReportsByTarget(ctx, targetID)
	if err != nil {
		return entities.ReportStats{}, fmt.Errorf("Failed to compute target stats: %w", err)
	}

	stats := entities.ReportStats{
		TargetID:   targetID,
		Total:      len(reports),
		ByCategory: map[entities.Category]int{},
		ByPriority: map[entities.Priority]int{},
		ByStatus:   map[entities.Status]int{},
	}
	reporters := map[string]struct{}{}
	escalated := 0
	for _, report := range reports {
		reporters[report.ReporterID] = struct{}{}
		stats.ByCategory[report.Category]++
		stats.ByPriority[report.Priority]++
		stats.ByStatus[report.Status]++
		if report.EscalatedCount > 0 {
			escalated++
		}
	}
	stats.UniqueReporters = len(reporters)
	if stats.Total > 0 {
		stats.EscalationRate = float64(escalated) / float64(stats.Total)
	}
	return stats, nil
}
