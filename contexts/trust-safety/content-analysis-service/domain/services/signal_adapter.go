package services

import (
	"fmt"
	"sort"
	"strings"

	"warden/contexts/trust-safety/content-analysis-service/domain/entities"
)

type severityFamily int

const (
	familyGeneric severityFamily = iota
	familyModerate
	familySevere
)

type categorySpec struct {
	violationType entities.ViolationType
	family        severityFamily
}

// categoryTable is the fixed mapping from classifier categories to the
// violation vocabulary. Several source categories collapse onto one type.
var categoryTable = map[string]categorySpec{
	"harassment":             {entities.ViolationHarassment, familyModerate},
	"harassment/threatening": {entities.ViolationHarassment, familySevere},
	"hate":                   {entities.ViolationHateSpeech, familyModerate},
	"hate/threatening":       {entities.ViolationHateSpeech, familySevere},
	"violence":               {entities.ViolationViolence, familyModerate},
	"violence/graphic":       {entities.ViolationViolence, familySevere},
	"self-harm":              {entities.ViolationSelfHarm, familyModerate},
	"self-harm/intent":       {entities.ViolationSelfHarm, familySevere},
	"self-harm/instructions": {entities.ViolationSelfHarm, familySevere},
	"sexual":                 {entities.ViolationSexualContent, familyModerate},
	"sexual/minors":          {entities.ViolationMinorSafety, familySevere},
}

// categoryOrder fixes the emission order for violations so output does not
// depend on map iteration.
var categoryOrder = []string{
	"harassment",
	"harassment/threatening",
	"hate",
	"hate/threatening",
	"violence",
	"violence/graphic",
	"self-harm",
	"self-harm/intent",
	"self-harm/instructions",
	"sexual",
	"sexual/minors",
}

// rejectCategories triggers ShouldReject above 0.8 regardless of the
// per-category violation thresholds.
var rejectCategories = map[string]struct{}{
	"hate/threatening":       {},
	"violence/graphic":       {},
	"self-harm/intent":       {},
	"self-harm/instructions": {},
	"sexual/minors":          {},
}

const defaultCategoryThreshold = 0.7

// SignalAdapterConfig holds the per-category score thresholds. Keys may be
// full category names or family roots ("harassment" also covers
// "harassment/threatening" unless the sub-category has its own entry).
type SignalAdapterConfig struct {
	CategoryThresholds map[string]float64
}

func DefaultSignalAdapterConfig() SignalAdapterConfig {
	return SignalAdapterConfig{
		CategoryThresholds: map[string]float64{
			"harassment": defaultCategoryThreshold,
			"hate":       defaultCategoryThreshold,
			"violence":   defaultCategoryThreshold,
			"sexual":     defaultCategoryThreshold,
			"self-harm":  defaultCategoryThreshold,
		},
	}
}

// SignalAdapter converts external classifier responses into the violation
// vocabulary. It is pure and safe to share.
type SignalAdapter struct {
	Config SignalAdapterConfig
}

func NewSignalAdapter(config SignalAdapterConfig) SignalAdapter {
	if len(config.CategoryThresholds) == 0 {
		config = DefaultSignalAdapterConfig()
	}
	return SignalAdapter{Config: config}
}

// ConvertToViolations emits one violation draft per category whose score
// exceeds that category's threshold. Unrecognized categories map to the
// generic violation type with the default threshold.
func (a SignalAdapter) ConvertToViolations(response entities.ClassificationResult, userID string, whisperID string) []entities.ViolationDraft {
	drafts := make([]entities.ViolationDraft, 0, 2)
	for _, category := range categoryOrder {
		score, ok := response.CategoryScores[category]
		if !ok || score <= a.thresholdFor(category) {
			continue
		}
		spec := categoryTable[category]
		drafts = append(drafts, a.draftFor(category, spec, score, userID, whisperID))
	}
	for _, category := range unknownCategories(response) {
		score := response.CategoryScores[category]
		if score <= a.thresholdFor(category) {
			continue
		}
		spec := categorySpec{violationType: entities.ViolationOther, family: familyGeneric}
		drafts = append(drafts, a.draftFor(category, spec, score, userID, whisperID))
	}
	return drafts
}

func (a SignalAdapter) draftFor(category string, spec categorySpec, score float64, userID string, whisperID string) entities.ViolationDraft {
	return entities.ViolationDraft{
		UserID:          userID,
		WhisperID:       whisperID,
		ViolationType:   spec.violationType,
		Reason:          fmt.Sprintf("Classifier category %q scored %.2f", category, score),
		Severity:        severityFor(spec.family, score),
		Confidence:      score,
		SuggestedAction: ActionForViolation(spec.violationType, score),
	}
}

// ShouldReject holds when the response is globally flagged or any of the
// fixed critical categories exceeds 0.8. It ignores the per-category
// violation thresholds.
func (a SignalAdapter) ShouldReject(response entities.ClassificationResult) bool {
	if response.Flagged {
		return true
	}
	for category := range rejectCategories {
		if response.CategoryScores[category] > 0.8 {
			return true
		}
	}
	return false
}

// Summarize renders a short human-readable account of the response, listing
// flagged categories in descending score order.
func (a SignalAdapter) Summarize(response entities.ClassificationResult) string {
	type scored struct {
		category string
		score    float64
	}
	hits := make([]scored, 0, len(response.CategoryScores))
	for category, score := range response.CategoryScores {
		if score > a.thresholdFor(category) {
			hits = append(hits, scored{category, score})
		}
	}
	if len(hits) == 0 {
		if response.Flagged {
			return "classifier flagged the content without a dominant category"
		}
		return "classifier reported no concerning categories"
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].category < hits[j].category
	})
	parts := make([]string, 0, len(hits))
	for _, hit := range hits {
		parts = append(parts, fmt.Sprintf("%s (%.2f)", hit.category, hit.score))
	}
	return "classifier flagged: " + strings.Join(parts, ", ")
}

// ActionForViolation derives the recommended moderation outcome from a
// violation type and confidence. Identity-harm types escalate hardest.
func ActionForViolation(violationType entities.ViolationType, confidence float64) entities.SuggestedAction {
	switch violationType {
	case entities.ViolationHarassment, entities.ViolationHateSpeech:
		switch {
		case confidence > 0.9:
			return entities.ActionBan
		case confidence > 0.7:
			return entities.ActionReject
		default:
			return entities.ActionWarn
		}
	case entities.ViolationSexualContent:
		switch {
		case confidence > 0.9:
			return entities.ActionReject
		case confidence > 0.7:
			return entities.ActionFlag
		default:
			return entities.ActionWarn
		}
	default:
		if confidence >= defaultCategoryThreshold {
			return entities.ActionReject
		}
		return entities.ActionWarn
	}
}

func (a SignalAdapter) thresholdFor(category string) float64 {
	if threshold, ok := a.Config.CategoryThresholds[category]; ok {
		return threshold
	}
	if root, _, found := strings.Cut(category, "/"); found {
		if threshold, ok := a.Config.CategoryThresholds[root]; ok {
			return threshold
		}
	}
	return defaultCategoryThreshold
}

func severityFor(family severityFamily, score float64) entities.Severity {
	switch family {
	case familySevere:
		switch {
		case score > 0.9:
			return entities.SeverityCritical
		case score > 0.7:
			return entities.SeverityHigh
		default:
			return entities.SeverityMedium
		}
	case familyModerate:
		switch {
		case score > 0.9:
			return entities.SeverityHigh
		case score > 0.7:
			return entities.SeverityMedium
		default:
			return entities.SeverityLow
		}
	default:
		switch {
		case score >= 0.95:
			return entities.SeverityCritical
		case score >= 0.85:
			return entities.SeverityHigh
		case score >= 0.65:
			return entities.SeverityMedium
		default:
			return entities.SeverityLow
		}
	}
}

func unknownCategories(response entities.ClassificationResult) []string {
	unknown := make([]string, 0)
	for category := range response.CategoryScores {
		if _, ok := categoryTable[category]; !ok {
			unknown = append(unknown, category)
		}
	}
	sort.Strings(unknown)
	return unknown
}
