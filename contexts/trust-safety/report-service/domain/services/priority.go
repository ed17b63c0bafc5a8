package services

import (
	"warden/contexts/trust-safety/report-service/domain/entities"
)

// PriorityConfig exposes every tunable of the priority engine as data. The
// branching surface stays small and each table is independently testable.
type PriorityConfig struct {
	CategoryMultipliers map[entities.Category]float64

	// Numeric band thresholds mapping the weighted value onto the tiers.
	CriticalThreshold float64
	HighThreshold     float64
	MediumThreshold   float64
	LowThreshold      float64

	// Report-count thresholds for automatic escalation per current tier.
	EscalationThresholds map[entities.Priority]int

	// Numeric mid-point per level before the category multiplier.
	LevelBaselines  map[string]float64
	DefaultBaseline float64

	// Reputation-score fine adjustment bounds.
	BoostScore  int
	ReduceScore int

	Weights       map[string]float64
	DefaultWeight float64
}

func DefaultPriorityConfig() PriorityConfig {
	return PriorityConfig{
		CategoryMultipliers: map[entities.Category]float64{
			entities.CategoryHarassment:    1.5,
			entities.CategoryHateSpeech:    1.8,
			entities.CategoryViolence:      2.0,
			entities.CategorySexualContent: 1.7,
			entities.CategorySpam:          1.2,
			entities.CategoryScam:          1.4,
			entities.CategoryCopyright:     1.1,
			entities.CategoryPersonalInfo:  1.3,
			entities.CategoryMinorSafety:   2.0,
			entities.CategoryOther:         1.0,
		},
		CriticalThreshold: 90,
		HighThreshold:     75,
		MediumThreshold:   50,
		LowThreshold:      25,
		EscalationThresholds: map[entities.Priority]int{
			entities.PriorityCritical: 1,
			entities.PriorityHigh:     3,
			entities.PriorityMedium:   5,
			entities.PriorityLow:      10,
		},
		LevelBaselines: map[string]float64{
			"trusted":  50,
			"verified": 48,
			"standard": 45,
			"flagged":  40,
			"banned":   35,
		},
		DefaultBaseline: 45,
		Weights: map[string]float64{
			"trusted":  2.0,
			"verified": 1.5,
			"standard": 1.0,
			"flagged":  0.5,
			"banned":   0.0,
		},
		DefaultWeight: 1.0,
	}
}

// ReputationSnapshot is the slice of a reporter's reputation the engine
// consumes: the trust level and score captured at submission time.
type ReputationSnapshot struct {
	Level string
	Score int
}

// PriorityEngine turns reporter reputation and report category into a
// priority tier. It sits on the hot path of report intake, so every failure
// mode resolves to a documented default instead of an error.
type PriorityEngine struct {
	config PriorityConfig
}

func NewPriorityEngine(config PriorityConfig) PriorityEngine {
	defaults := DefaultPriorityConfig()
	if len(config.CategoryMultipliers) == 0 {
		config.CategoryMultipliers = defaults.CategoryMultipliers
	}
	if config.CriticalThreshold == 0 {
		config.CriticalThreshold = defaults.CriticalThreshold
	}
	if config.HighThreshold == 0 {
		config.HighThreshold = defaults.HighThreshold
	}
	if config.MediumThreshold == 0 {
		config.MediumThreshold = defaults.MediumThreshold
	}
	if config.LowThreshold == 0 {
		config.LowThreshold = defaults.LowThreshold
	}
	if len(config.EscalationThresholds) == 0 {
		config.EscalationThresholds = defaults.EscalationThresholds
	}
	if len(config.LevelBaselines) == 0 {
		config.LevelBaselines = defaults.LevelBaselines
	}
	if config.DefaultBaseline == 0 {
		config.DefaultBaseline = defaults.DefaultBaseline
	}
	if config.BoostScore == 0 {
		config.BoostScore = 90
	}
	if config.ReduceScore == 0 {
		config.ReduceScore = 20
	}
	if len(config.Weights) == 0 {
		config.Weights = defaults.Weights
	}
	if config.DefaultWeight == 0 {
		config.DefaultWeight = defaults.DefaultWeight
	}
	return PriorityEngine{config: config}
}

// CalculatePriority starts from the level's numeric mid-point, applies the
// category multiplier, maps the value onto the tier bands, then fine-adjusts
// one step for very high or very low reporter scores. Nil reputations,
// unknown levels and unknown categories all resolve to MEDIUM.
func (e PriorityEngine) CalculatePriority(reputation *ReputationSnapshot, category entities.Category) entities.Priority {
	if reputation == nil || !entities.IsValidCategory(category) {
		return entities.PriorityMedium
	}
	baseline, ok := e.config.LevelBaselines[reputation.Level]
	if !ok {
		return entities.PriorityMedium
	}
	multiplier, ok := e.config.CategoryMultipliers[category]
	if !ok {
		return entities.PriorityMedium
	}

	value := baseline * multiplier
	priority := e.tierFor(value)
	if reputation.Score >= e.config.BoostScore {
		priority = EscalatePriority(priority)
	} else if reputation.Score <= e.config.ReduceScore {
		priority = reducePriority(priority)
	}
	return priority
}

func (e PriorityEngine) tierFor(value float64) entities.Priority {
	switch {
	case value > e.config.CriticalThreshold:
		return entities.PriorityCritical
	case value > e.config.HighThreshold:
		return entities.PriorityHigh
	case value > e.config.MediumThreshold:
		return entities.PriorityMedium
	default:
		return entities.PriorityLow
	}
}

// CalculateReputationWeight returns the reporter's multiplier, 1.0 for nil
// or unrecognized input.
func (e PriorityEngine) CalculateReputationWeight(reputation *ReputationSnapshot) float64 {
	if reputation == nil {
		return e.config.DefaultWeight
	}
	weight, ok := e.config.Weights[reputation.Level]
	if !ok {
		return e.config.DefaultWeight
	}
	return weight
}

// ShouldEscalate reports whether the accumulated report count for a target
// crosses the escalation threshold of the current tier. CRITICAL always
// escalates.
func (e PriorityEngine) ShouldEscalate(priority entities.Priority, reportCount int) bool {
	threshold, ok := e.config.EscalationThresholds[priority]
	if !ok {
		return false
	}
	return reportCount >= threshold
}

// EscalatePriority is the one-step monotone transition, idempotent at the
// CRITICAL ceiling. Unrecognized input resolves to MEDIUM.
func EscalatePriority(priority entities.Priority) entities.Priority {
	switch priority {
	case entities.PriorityLow:
		return entities.PriorityMedium
	case entities.PriorityMedium:
		return entities.PriorityHigh
	case entities.PriorityHigh:
		return entities.PriorityCritical
	case entities.PriorityCritical:
		return entities.PriorityCritical
	default:
		return entities.PriorityMedium
	}
}

func reducePriority(priority entities.Priority) entities.Priority {
	switch priority {
	case entities.PriorityCritical:
		return entities.PriorityHigh
	case entities.PriorityHigh:
		return entities.PriorityMedium
	case entities.PriorityMedium:
		return entities.PriorityLow
	case entities.PriorityLow:
		return entities.PriorityLow
	default:
		return entities.PriorityMedium
	}
}

// PriorityDescription maps a tier onto the moderation queue copy.
func PriorityDescription(priority entities.Priority) string {
	switch priority {
	case entities.PriorityCritical:
		return "Critical: immediate review required"
	case entities.PriorityHigh:
		return "High: review within 1 hour"
	case entities.PriorityMedium:
		return "Medium: review within 24 hours"
	case entities.PriorityLow:
		return "Low: review when queue allows"
	default:
		return "Medium: review within 24 hours"
	}
}
