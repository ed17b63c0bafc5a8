package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"warden/contexts/trust-safety/content-analysis-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/content-analysis-service/domain/errors"
	"warden/contexts/trust-safety/content-analysis-service/domain/services"
	"warden/contexts/trust-safety/content-analysis-service/ports"
)

const defaultActivityWindow = 10

type Service struct {
	Detector   services.Detector
	Adapter    services.SignalAdapter
	Classifier ports.ClassifierClient
	Activity   ports.ActivityStore
	Reputation ports.ReputationReader
	Violations ports.ViolationRecorder
	WindowSize int
	Clock      ports.Clock
	Logger     *slog.Logger
}

// AnalyzeWhisper runs the lexical and behavioral checks over a whisper,
// merges the external classifier verdict when a client is configured,
// biases the suggested action by the author's trust level, appends the
// whisper to the author's activity window and records any violations the
// verdict implies.
func (s Service) AnalyzeWhisper(ctx context.Context, input ports.AnalyzeInput) (entities.SpamAnalysisResult, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.WhisperID = strings.TrimSpace(input.WhisperID)
	if input.UserID == "" || input.WhisperID == "" {
		return entities.SpamAnalysisResult{}, domainerrors.ErrInvalidRequest
	}
	if strings.TrimSpace(input.Content) == "" {
		return entities.SpamAnalysisResult{}, domainerrors.ErrEmptyContent
	}

	window, err := s.recentActivity(ctx, input.UserID)
	if err != nil {
		return entities.SpamAnalysisResult{}, fmt.Errorf("Failed to analyze whisper: %w", err)
	}

	result := s.Detector.Analyze(input.Content, window)
	result.SuggestedAction = services.DetermineSuggestedAction(result.SpamScore, result.ScamScore, s.reputationLevel(ctx, input.UserID))

	var drafts []entities.ViolationDraft
	if result.IsSpam || result.IsScam {
		drafts = services.ConvertToViolations(result, input.UserID, input.WhisperID)
	}

	if s.Classifier != nil {
		response, err := s.Classifier.Classify(ctx, input.Content)
		if err != nil {
			resolveLogger(s.Logger).Error("classification call failed",
				"event", "classification_failed",
				"module", "trust-safety/content-analysis-service",
				"layer", "application",
				"whisper_id", input.WhisperID,
				"error", err.Error(),
			)
			return entities.SpamAnalysisResult{}, fmt.Errorf("Failed to analyze whisper: %w", err)
		}
		drafts = append(drafts, s.Adapter.ConvertToViolations(response, input.UserID, input.WhisperID)...)
		// Reject floor: the classifier verdict overrides the trusted
		// downgrade but never lowers an already-decided ban.
		if s.Adapter.ShouldReject(response) && result.SuggestedAction != entities.ActionBan {
			result.SuggestedAction = entities.ActionReject
		}
	}

	if err := s.Activity.RecordActivity(ctx, input.UserID, entities.ActivityItem{
		WhisperID: input.WhisperID,
		Content:   input.Content,
		PostedAt:  s.now(),
	}); err != nil {
		return entities.SpamAnalysisResult{}, fmt.Errorf("Failed to analyze whisper: %w", err)
	}

	if len(drafts) > 0 {
		if err := s.recordViolations(ctx, drafts); err != nil {
			return entities.SpamAnalysisResult{}, fmt.Errorf("Failed to analyze whisper: %w", err)
		}
		resolveLogger(s.Logger).Info("whisper flagged by spam analysis",
			"event", "whisper_flagged",
			"module", "trust-safety/content-analysis-service",
			"layer", "application",
			"whisper_id", input.WhisperID,
			"spam_score", result.SpamScore,
			"scam_score", result.ScamScore,
			"violation_count", len(drafts),
			"suggested_action", string(result.SuggestedAction),
		)
	}
	return result, nil
}

// IngestClassification sends a whisper to the external classifier and
// converts the response into the violation vocabulary.
func (s Service) IngestClassification(ctx context.Context, input ports.IngestInput) (ports.IngestResult, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.WhisperID = strings.TrimSpace(input.WhisperID)
	if input.UserID == "" || input.WhisperID == "" {
		return ports.IngestResult{}, domainerrors.ErrInvalidRequest
	}
	if strings.TrimSpace(input.Content) == "" {
		return ports.IngestResult{}, domainerrors.ErrEmptyContent
	}
	if s.Classifier == nil {
		return ports.IngestResult{}, domainerrors.ErrDependencyUnavailable
	}

	response, err := s.Classifier.Classify(ctx, input.Content)
	if err != nil {
		resolveLogger(s.Logger).Error("classification call failed",
			"event", "classification_failed",
			"module", "trust-safety/content-analysis-service",
			"layer", "application",
			"whisper_id", input.WhisperID,
			"error", err.Error(),
		)
		return ports.IngestResult{}, fmt.Errorf("Failed to classify whisper content: %w", err)
	}

	drafts := s.Adapter.ConvertToViolations(response, input.UserID, input.WhisperID)
	if err := s.recordViolations(ctx, drafts); err != nil {
		return ports.IngestResult{}, fmt.Errorf("Failed to classify whisper content: %w", err)
	}

	result := ports.IngestResult{
		Rejected:   s.Adapter.ShouldReject(response),
		Summary:    s.Adapter.Summarize(response),
		Violations: drafts,
	}
	if result.Rejected {
		resolveLogger(s.Logger).Info("whisper rejected by classifier",
			"event", "whisper_rejected",
			"module", "trust-safety/content-analysis-service",
			"layer", "application",
			"whisper_id", input.WhisperID,
			"summary", result.Summary,
		)
	}
	return result, nil
}

func (s Service) recentActivity(ctx context.Context, userID string) ([]entities.ActivityItem, error) {
	if s.Activity == nil {
		return nil, domainerrors.ErrDependencyUnavailable
	}
	limit := s.WindowSize
	if limit <= 0 {
		limit = defaultActivityWindow
	}
	return s.Activity.RecentActivity(ctx, userID, limit)
}

// reputationLevel degrades to the neutral level on any lookup failure so a
// broken reputation record never blocks analysis. This is the only place
// analysis swallows a dependency error.
func (s Service) reputationLevel(ctx context.Context, userID string) string {
	if s.Reputation == nil {
		return ""
	}
	level, err := s.Reputation.Level(ctx, userID)
	if err != nil {
		resolveLogger(s.Logger).Warn("reputation lookup failed, using neutral level",
			"event", "reputation_lookup_degraded",
			"module", "trust-safety/content-analysis-service",
			"layer", "application",
			"user_id", userID,
			"error", err.Error(),
		)
		return ""
	}
	return level
}

func (s Service) recordViolations(ctx context.Context, drafts []entities.ViolationDraft) error {
	if len(drafts) == 0 || s.Violations == nil {
		return nil
	}
	return s.Violations.RecordViolations(ctx, drafts)
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
