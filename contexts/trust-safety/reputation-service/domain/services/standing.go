package services

import (
	"warden/contexts/trust-safety/reputation-service/domain/entities"
)

const (
	ScoreFloor   = 0
	ScoreCeiling = 100
)

// StandingConfig exposes the weight, penalty and level-threshold tables as
// configuration instead of branching per call site.
type StandingConfig struct {
	Weights       map[entities.Level]float64
	DefaultWeight float64

	Penalties      map[entities.Severity]int
	DefaultPenalty int

	// Minimum score per level, evaluated highest first.
	TrustedMinScore  int
	VerifiedMinScore int
	StandardMinScore int
	FlaggedMinScore  int

	// Violation pressure: active violations at or above these counts cap
	// the level regardless of score.
	VerifiedMaxViolations int
	TrustedMaxViolations  int
	FlagPressureCount     int
}

func DefaultStandingConfig() StandingConfig {
	return StandingConfig{
		Weights: map[entities.Level]float64{
			entities.LevelTrusted:  2.0,
			entities.LevelVerified: 1.5,
			entities.LevelStandard: 1.0,
			entities.LevelFlagged:  0.5,
			entities.LevelBanned:   0.0,
		},
		DefaultWeight: 1.0,
		Penalties: map[entities.Severity]int{
			entities.SeverityLow:      5,
			entities.SeverityMedium:   10,
			entities.SeverityHigh:     20,
			entities.SeverityCritical: 35,
		},
		DefaultPenalty:        10,
		TrustedMinScore:       90,
		VerifiedMinScore:      75,
		StandardMinScore:      40,
		FlaggedMinScore:       10,
		TrustedMaxViolations:  0,
		VerifiedMaxViolations: 1,
		FlagPressureCount:     3,
	}
}

// Standing is the pure reputation arithmetic shared by the application
// layer. All lookups fail open to the documented defaults.
type Standing struct {
	config StandingConfig
}

func NewStanding(config StandingConfig) Standing {
	defaults := DefaultStandingConfig()
	if len(config.Weights) == 0 {
		config.Weights = defaults.Weights
	}
	if config.DefaultWeight == 0 {
		config.DefaultWeight = defaults.DefaultWeight
	}
	if len(config.Penalties) == 0 {
		config.Penalties = defaults.Penalties
	}
	if config.DefaultPenalty == 0 {
		config.DefaultPenalty = defaults.DefaultPenalty
	}
	if config.TrustedMinScore == 0 {
		config.TrustedMinScore = defaults.TrustedMinScore
	}
	if config.VerifiedMinScore == 0 {
		config.VerifiedMinScore = defaults.VerifiedMinScore
	}
	if config.StandardMinScore == 0 {
		config.StandardMinScore = defaults.StandardMinScore
	}
	if config.FlaggedMinScore == 0 {
		config.FlaggedMinScore = defaults.FlaggedMinScore
	}
	if config.VerifiedMaxViolations == 0 {
		config.VerifiedMaxViolations = defaults.VerifiedMaxViolations
	}
	if config.FlagPressureCount == 0 {
		config.FlagPressureCount = defaults.FlagPressureCount
	}
	return Standing{config: config}
}

// WeightForLevel returns the priority multiplier for a trust level.
// Unrecognized levels resolve to the standard weight, not an error.
func (s Standing) WeightForLevel(level entities.Level) float64 {
	weight, ok := s.config.Weights[level]
	if !ok {
		return s.config.DefaultWeight
	}
	return weight
}

// WeightFor fails open on a missing reputation: a nil record carries the
// standard weight.
func (s Standing) WeightFor(reputation *entities.UserReputation) float64 {
	if reputation == nil {
		return s.config.DefaultWeight
	}
	return s.WeightForLevel(reputation.Level)
}

// PenaltyForSeverity maps a violation severity onto a score deduction.
func (s Standing) PenaltyForSeverity(severity entities.Severity) int {
	penalty, ok := s.config.Penalties[severity]
	if !ok {
		return s.config.DefaultPenalty
	}
	return penalty
}

// LevelForScore derives the level from the score band, capped by active
// violation pressure. The mapping is monotone in both inputs.
func (s Standing) LevelForScore(score int, activeViolations int) entities.Level {
	if score < s.config.FlaggedMinScore {
		return entities.LevelBanned
	}
	if score < s.config.StandardMinScore || activeViolations >= s.config.FlagPressureCount {
		return entities.LevelFlagged
	}
	if score >= s.config.TrustedMinScore && activeViolations <= s.config.TrustedMaxViolations {
		return entities.LevelTrusted
	}
	if score >= s.config.VerifiedMinScore && activeViolations <= s.config.VerifiedMaxViolations {
		return entities.LevelVerified
	}
	return entities.LevelStandard
}

// ClampScore keeps a score inside the conventional 0-100 range.
func ClampScore(score int) int {
	if score < ScoreFloor {
		return ScoreFloor
	}
	if score > ScoreCeiling {
		return ScoreCeiling
	}
	return score
}
