package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"warden/contexts/trust-safety/content-analysis-service/domain/entities"
)

// DetectorConfig carries the tunable thresholds for the lexical and
// behavioral checks. Zero values are replaced by the documented defaults.
type DetectorConfig struct {
	// DuplicateSimilarity is the token-overlap ratio at or above which two
	// whispers count as near-duplicates.
	DuplicateSimilarity float64
	// CrossSimilarity is the average pairwise overlap at or above which the
	// whole window looks like recycled content.
	CrossSimilarity float64
	// RapidIntervalSeconds is the inter-post gap below which posting counts
	// as abnormally fast.
	RapidIntervalSeconds float64
	// PeriodicVariance is the gap variance (seconds squared) below which
	// posting cadence looks automated. Requires at least three items.
	PeriodicVariance float64
	// SpamDetection and ScamDetection are the aggregate scores at or above
	// which the respective boolean verdict is set.
	SpamDetection float64
	ScamDetection float64
}

func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		DuplicateSimilarity:  0.8,
		CrossSimilarity:      0.5,
		RapidIntervalSeconds: 30,
		PeriodicVariance:     25,
		SpamDetection:        0.5,
		ScamDetection:        0.5,
	}
}

type phraseSet struct {
	flagType entities.ContentFlagType
	severity entities.Severity
	phrases  []string
}

// Curated phrase sets per lexical category. Matching is lowercase substring.
var contentPhraseSets = []phraseSet{
	{
		flagType: entities.FlagFinancialLure,
		severity: entities.SeverityHigh,
		phrases: []string{
			"double your money",
			"guaranteed returns",
			"guaranteed profit",
			"crypto giveaway",
			"investment opportunity",
			"get rich quick",
			"easy money",
			"passive income guaranteed",
			"send me your wallet",
			"cash app me",
			"wire transfer",
		},
	},
	{
		flagType: entities.FlagPhishing,
		severity: entities.SeverityHigh,
		phrases: []string{
			"verify your account",
			"confirm your password",
			"account will be suspended",
			"click this link",
			"claim your prize",
			"you have been selected",
			"you have won",
			"update your payment details",
			"login here",
		},
	},
	{
		flagType: entities.FlagClickbait,
		severity: entities.SeverityLow,
		phrases: []string{
			"you won't believe",
			"what happened next",
			"doctors hate",
			"this one trick",
			"number one secret",
			"gone wrong",
			"shocking truth",
		},
	},
	{
		flagType: entities.FlagUrgency,
		severity: entities.SeverityMedium,
		phrases: []string{
			"act now",
			"hurry up",
			"last chance",
			"expires today",
			"limited time only",
			"only a few left",
			"don't miss out",
			"offer ends soon",
		},
	},
	{
		flagType: entities.FlagAbsoluteClaim,
		severity: entities.SeverityLow,
		phrases: []string{
			"100% guaranteed",
			"never fails",
			"always works",
			"no risk at all",
			"everyone agrees",
			"proven to work every time",
		},
	},
}

var engagementBaitPhrases = []string{
	"like and share",
	"tag someone",
	"tag a friend",
	"share this whisper",
	"follow me and",
	"follow for follow",
	"repost this",
}

// severityWeights scale a flag's confidence when aggregating scores.
var severityWeights = map[entities.Severity]float64{
	entities.SeverityLow:      0.25,
	entities.SeverityMedium:   0.5,
	entities.SeverityHigh:     0.75,
	entities.SeverityCritical: 1.0,
}

// spamScoreContentFlags and scamScoreContentFlags decide which lexical flag
// types bear on which score. A flag type absent from a set contributes
// nothing to that score.
var spamScoreContentFlags = map[entities.ContentFlagType]struct{}{
	entities.FlagClickbait:     {},
	entities.FlagUrgency:       {},
	entities.FlagAbsoluteClaim: {},
}

var scamScoreContentFlags = map[entities.ContentFlagType]struct{}{
	entities.FlagFinancialLure: {},
	entities.FlagPhishing:      {},
	entities.FlagUrgency:       {},
	entities.FlagAbsoluteClaim: {},
}

// All behavioral flag types bear on the spam score only.

// Detector runs the lexical and behavioral spam/scam checks. It is pure:
// all state arrives through arguments.
type Detector struct {
	Config DetectorConfig
}

func NewDetector(config DetectorConfig) Detector {
	defaults := DefaultDetectorConfig()
	if config.DuplicateSimilarity <= 0 {
		config.DuplicateSimilarity = defaults.DuplicateSimilarity
	}
	if config.CrossSimilarity <= 0 {
		config.CrossSimilarity = defaults.CrossSimilarity
	}
	if config.RapidIntervalSeconds <= 0 {
		config.RapidIntervalSeconds = defaults.RapidIntervalSeconds
	}
	if config.PeriodicVariance <= 0 {
		config.PeriodicVariance = defaults.PeriodicVariance
	}
	if config.SpamDetection <= 0 {
		config.SpamDetection = defaults.SpamDetection
	}
	if config.ScamDetection <= 0 {
		config.ScamDetection = defaults.ScamDetection
	}
	return Detector{Config: config}
}

// Analyze scores a whisper body against the curated phrase sets and the
// author's recent-activity window.
func (d Detector) Analyze(content string, window []entities.ActivityItem) entities.SpamAnalysisResult {
	contentFlags := d.analyzeContent(content)
	behavioralFlags := d.analyzeBehavior(content, window)

	result := entities.SpamAnalysisResult{
		ContentFlags:    contentFlags,
		BehavioralFlags: behavioralFlags,
		SpamScore:       CalculateSpamScore(contentFlags, behavioralFlags),
		ScamScore:       CalculateScamScore(contentFlags),
	}
	result.IsSpam = result.SpamScore >= d.Config.SpamDetection
	result.IsScam = result.ScamScore >= d.Config.ScamDetection
	result.Reason = GenerateReason(result)
	return result
}

func (d Detector) analyzeContent(content string) []entities.ContentFlag {
	lowered := strings.ToLower(content)
	flags := make([]entities.ContentFlag, 0, 2)
	for _, set := range contentPhraseSets {
		matched := matchPhrases(lowered, set.phrases)
		if len(matched) == 0 {
			continue
		}
		flags = append(flags, entities.ContentFlag{
			Type:        set.flagType,
			Severity:    set.severity,
			Confidence:  patternConfidence(len(matched)),
			Description: describeContentFlag(set.flagType, len(matched)),
			Evidence:    matched,
		})
	}
	return flags
}

func (d Detector) analyzeBehavior(content string, window []entities.ActivityItem) []entities.BehavioralFlag {
	flags := make([]entities.BehavioralFlag, 0, 2)

	if matched := matchPhrases(strings.ToLower(content), engagementBaitPhrases); len(matched) > 0 {
		flags = append(flags, entities.BehavioralFlag{
			Type:        entities.FlagEngagementBait,
			Severity:    entities.SeverityLow,
			Confidence:  patternConfidence(len(matched)),
			Description: "engagement-bait phrasing detected",
			Evidence:    matched,
		})
	}
	if len(window) == 0 {
		return flags
	}

	if flag, ok := d.duplicateFlag(content, window); ok {
		flags = append(flags, flag)
	}
	if flag, ok := d.crossSimilarityFlag(window); ok {
		flags = append(flags, flag)
	}

	gaps := postingGaps(window)
	if flag, ok := d.rapidPostingFlag(gaps); ok {
		flags = append(flags, flag)
	}
	if flag, ok := d.periodicityFlag(gaps); ok {
		flags = append(flags, flag)
	}
	return flags
}

func (d Detector) duplicateFlag(content string, window []entities.ActivityItem) (entities.BehavioralFlag, bool) {
	best := 0.0
	bestID := ""
	for _, item := range window {
		similarity := TokenOverlapRatio(content, item.Content)
		if similarity > best {
			best = similarity
			bestID = item.WhisperID
		}
	}
	if best < d.Config.DuplicateSimilarity {
		return entities.BehavioralFlag{}, false
	}
	return entities.BehavioralFlag{
		Type:        entities.FlagDuplicateContent,
		Severity:    entities.SeverityHigh,
		Confidence:  clampUnit(best),
		Description: "near-duplicate of a recent whisper by the same author",
		Evidence:    []string{fmt.Sprintf("similarity %.2f to whisper %s", best, bestID)},
	}, true
}

func (d Detector) crossSimilarityFlag(window []entities.ActivityItem) (entities.BehavioralFlag, bool) {
	if len(window) < 2 {
		return entities.BehavioralFlag{}, false
	}
	total := 0.0
	pairs := 0
	for i := 0; i < len(window); i++ {
		for j := i + 1; j < len(window); j++ {
			total += TokenOverlapRatio(window[i].Content, window[j].Content)
			pairs++
		}
	}
	average := total / float64(pairs)
	if average < d.Config.CrossSimilarity {
		return entities.BehavioralFlag{}, false
	}
	return entities.BehavioralFlag{
		Type:        entities.FlagCrossSimilarity,
		Severity:    entities.SeverityMedium,
		Confidence:  clampUnit(average),
		Description: "recent whispers are textually similar to each other",
		Evidence:    []string{fmt.Sprintf("average pairwise similarity %.2f over %d items", average, len(window))},
	}, true
}

func (d Detector) rapidPostingFlag(gaps []float64) (entities.BehavioralFlag, bool) {
	if len(gaps) == 0 {
		return entities.BehavioralFlag{}, false
	}
	shortest := gaps[0]
	for _, gap := range gaps[1:] {
		if gap < shortest {
			shortest = gap
		}
	}
	if shortest >= d.Config.RapidIntervalSeconds {
		return entities.BehavioralFlag{}, false
	}
	confidence := clampUnit(1 - shortest/d.Config.RapidIntervalSeconds)
	return entities.BehavioralFlag{
		Type:        entities.FlagRapidPosting,
		Severity:    entities.SeverityMedium,
		Confidence:  math.Max(confidence, 0.3),
		Description: "abnormally short interval between whispers",
		Evidence:    []string{fmt.Sprintf("shortest gap %.0fs", shortest)},
	}, true
}

func (d Detector) periodicityFlag(gaps []float64) (entities.BehavioralFlag, bool) {
	if len(gaps) < 3 {
		return entities.BehavioralFlag{}, false
	}
	variance := PopulationVariance(gaps)
	if variance >= d.Config.PeriodicVariance {
		return entities.BehavioralFlag{}, false
	}
	return entities.BehavioralFlag{
		Type:        entities.FlagPeriodicPosting,
		Severity:    entities.SeverityHigh,
		Confidence:  0.8,
		Description: "posting cadence is consistent with automation",
		Evidence:    []string{fmt.Sprintf("gap variance %.1fs^2 over %d gaps", variance, len(gaps))},
	}, true
}

// CalculateSpamScore is a confidence-weighted, severity-weighted sum over
// the flags that bear on spam, clamped to [0,1]. Empty input yields 0.
func CalculateSpamScore(contentFlags []entities.ContentFlag, behavioralFlags []entities.BehavioralFlag) float64 {
	score := 0.0
	for _, flag := range contentFlags {
		if _, ok := spamScoreContentFlags[flag.Type]; !ok {
			continue
		}
		score += flag.Confidence * severityWeight(flag.Severity)
	}
	for _, flag := range behavioralFlags {
		score += flag.Confidence * severityWeight(flag.Severity)
	}
	return clampUnit(score)
}

// CalculateScamScore mirrors CalculateSpamScore for the scam-bearing lexical
// flags. Behavioral flags carry no scam weight.
func CalculateScamScore(contentFlags []entities.ContentFlag) float64 {
	score := 0.0
	for _, flag := range contentFlags {
		if _, ok := scamScoreContentFlags[flag.Type]; !ok {
			continue
		}
		score += flag.Confidence * severityWeight(flag.Severity)
	}
	return clampUnit(score)
}

// DetermineSuggestedAction applies the score bands and the one-step
// reputation bias. Mid-band scores deliberately stay at warn to avoid
// false positives.
func DetermineSuggestedAction(spamScore float64, scamScore float64, level string) entities.SuggestedAction {
	score := math.Max(spamScore, scamScore)

	action := entities.ActionWarn
	if score >= 0.7 {
		action = entities.ActionReject
	}

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trusted":
		action = downgradeAction(action)
	case "banned":
		if action == entities.ActionWarn {
			action = entities.ActionFlag
		}
	}
	return action
}

func downgradeAction(action entities.SuggestedAction) entities.SuggestedAction {
	switch action {
	case entities.ActionBan:
		return entities.ActionReject
	case entities.ActionReject:
		return entities.ActionFlag
	case entities.ActionFlag:
		return entities.ActionWarn
	default:
		return entities.ActionWarn
	}
}

// GenerateReason composes the human-readable explanation, preferring scam
// framing over spam framing when both verdicts hold.
func GenerateReason(result entities.SpamAnalysisResult) string {
	switch {
	case result.IsScam:
		return "Potential scam detected: " + flagSummary(result, scamScoreContentFlags)
	case result.IsSpam:
		return "Spam patterns detected: " + flagSummary(result, nil)
	default:
		return "Content flagged by automated review"
	}
}

func flagSummary(result entities.SpamAnalysisResult, include map[entities.ContentFlagType]struct{}) string {
	parts := make([]string, 0, len(result.ContentFlags)+len(result.BehavioralFlags))
	for _, flag := range result.ContentFlags {
		if include != nil {
			if _, ok := include[flag.Type]; !ok {
				continue
			}
		}
		parts = append(parts, string(flag.Type))
	}
	if include == nil {
		for _, flag := range result.BehavioralFlags {
			parts = append(parts, string(flag.Type))
		}
	}
	if len(parts) == 0 {
		return "pattern analysis"
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// ConvertToViolations emits at most one spam and one scam violation draft
// for a single analysis, never more.
func ConvertToViolations(result entities.SpamAnalysisResult, userID string, whisperID string) []entities.ViolationDraft {
	drafts := make([]entities.ViolationDraft, 0, 2)
	if result.IsSpam {
		drafts = append(drafts, entities.ViolationDraft{
			UserID:          userID,
			WhisperID:       whisperID,
			ViolationType:   entities.ViolationSpam,
			Reason:          "Spam patterns detected: " + flagSummary(result, nil),
			Severity:        scoreSeverity(result.SpamScore),
			Confidence:      result.SpamScore,
			SuggestedAction: result.SuggestedAction,
		})
	}
	if result.IsScam {
		drafts = append(drafts, entities.ViolationDraft{
			UserID:          userID,
			WhisperID:       whisperID,
			ViolationType:   entities.ViolationScam,
			Reason:          "Potential scam detected: " + flagSummary(result, scamScoreContentFlags),
			Severity:        scoreSeverity(result.ScamScore),
			Confidence:      result.ScamScore,
			SuggestedAction: result.SuggestedAction,
		})
	}
	return drafts
}

func scoreSeverity(score float64) entities.Severity {
	switch {
	case score >= 0.9:
		return entities.SeverityCritical
	case score >= 0.7:
		return entities.SeverityHigh
	case score >= 0.5:
		return entities.SeverityMedium
	default:
		return entities.SeverityLow
	}
}

func severityWeight(severity entities.Severity) float64 {
	if weight, ok := severityWeights[severity]; ok {
		return weight
	}
	return severityWeights[entities.SeverityMedium]
}

func matchPhrases(lowered string, phrases []string) []string {
	matched := make([]string, 0, 2)
	for _, phrase := range phrases {
		if strings.Contains(lowered, phrase) {
			matched = append(matched, phrase)
		}
	}
	return matched
}

// patternConfidence grows with match density and caps below certainty.
func patternConfidence(hits int) float64 {
	if hits <= 0 {
		return 0
	}
	return math.Min(0.95, 0.25+0.25*float64(hits))
}

func describeContentFlag(flagType entities.ContentFlagType, hits int) string {
	noun := "patterns"
	if hits == 1 {
		noun = "pattern"
	}
	switch flagType {
	case entities.FlagFinancialLure:
		return fmt.Sprintf("%d financial-scam lure %s matched", hits, noun)
	case entities.FlagPhishing:
		return fmt.Sprintf("%d phishing %s matched", hits, noun)
	case entities.FlagClickbait:
		return fmt.Sprintf("%d clickbait %s matched", hits, noun)
	case entities.FlagUrgency:
		return fmt.Sprintf("%d manufactured-urgency %s matched", hits, noun)
	case entities.FlagAbsoluteClaim:
		return fmt.Sprintf("%d unverifiable absolute-claim %s matched", hits, noun)
	default:
		return fmt.Sprintf("%d %s matched", hits, noun)
	}
}

func postingGaps(window []entities.ActivityItem) []float64 {
	if len(window) < 2 {
		return nil
	}
	ordered := make([]entities.ActivityItem, len(window))
	copy(ordered, window)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].PostedAt.Before(ordered[j].PostedAt)
	})

	gaps := make([]float64, 0, len(ordered)-1)
	for i := 1; i < len(ordered); i++ {
		gap := ordered[i].PostedAt.Sub(ordered[i-1].PostedAt)
		if gap < 0 {
			gap = 0
		}
		gaps = append(gaps, gap.Round(time.Millisecond).Seconds())
	}
	return gaps
}
