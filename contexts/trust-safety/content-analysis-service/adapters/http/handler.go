package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"warden/contexts/trust-safety/content-analysis-service/application"
	"warden/contexts/trust-safety/content-analysis-service/domain/entities"
	"warden/contexts/trust-safety/content-analysis-service/ports"
	httptransport "warden/contexts/trust-safety/content-analysis-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) AnalyzeHandler(ctx context.Context, req httptransport.AnalyzeRequest) (httptransport.AnalysisResponse, error) {
	result, err := h.Service.AnalyzeWhisper(ctx, ports.AnalyzeInput{
		UserID:    strings.TrimSpace(req.UserID),
		WhisperID: strings.TrimSpace(req.WhisperID),
		Content:   req.Content,
	})
	if err != nil {
		return httptransport.AnalysisResponse{}, err
	}

	resp := httptransport.AnalysisResponse{Status: "success", Timestamp: time.Now().UTC().Format(time.RFC3339)}
	resp.Data.IsSpam = result.IsSpam
	resp.Data.IsScam = result.IsScam
	resp.Data.SpamScore = result.SpamScore
	resp.Data.ScamScore = result.ScamScore
	resp.Data.SuggestedAction = string(result.SuggestedAction)
	resp.Data.Reason = result.Reason
	resp.Data.ContentFlags = make([]httptransport.FlagBody, 0, len(result.ContentFlags))
	for _, flag := range result.ContentFlags {
		resp.Data.ContentFlags = append(resp.Data.ContentFlags, httptransport.FlagBody{
			Type:        string(flag.Type),
			Severity:    string(flag.Severity),
			Confidence:  flag.Confidence,
			Description: flag.Description,
			Evidence:    flag.Evidence,
		})
	}
	resp.Data.BehavioralFlags = make([]httptransport.FlagBody, 0, len(result.BehavioralFlags))
	for _, flag := range result.BehavioralFlags {
		resp.Data.BehavioralFlags = append(resp.Data.BehavioralFlags, httptransport.FlagBody{
			Type:        string(flag.Type),
			Severity:    string(flag.Severity),
			Confidence:  flag.Confidence,
			Description: flag.Description,
			Evidence:    flag.Evidence,
		})
	}
	return resp, nil
}

func (h Handler) ClassifyHandler(ctx context.Context, req httptransport.ClassifyRequest) (httptransport.ClassificationResponse, error) {
	result, err := h.Service.IngestClassification(ctx, ports.IngestInput{
		UserID:    strings.TrimSpace(req.UserID),
		WhisperID: strings.TrimSpace(req.WhisperID),
		Content:   req.Content,
	})
	if err != nil {
		return httptransport.ClassificationResponse{}, err
	}

	resp := httptransport.ClassificationResponse{Status: "success", Timestamp: time.Now().UTC().Format(time.RFC3339)}
	resp.Data.Rejected = result.Rejected
	resp.Data.Summary = result.Summary
	resp.Data.Violations = mapViolationBodies(result.Violations)
	return resp, nil
}

func mapViolationBodies(drafts []entities.ViolationDraft) []httptransport.ViolationBody {
	bodies := make([]httptransport.ViolationBody, 0, len(drafts))
	for _, draft := range drafts {
		bodies = append(bodies, httptransport.ViolationBody{
			UserID:          draft.UserID,
			WhisperID:       draft.WhisperID,
			ViolationType:   string(draft.ViolationType),
			Reason:          draft.Reason,
			Severity:        string(draft.Severity),
			Confidence:      draft.Confidence,
			SuggestedAction: string(draft.SuggestedAction),
		})
	}
	return bodies
}
