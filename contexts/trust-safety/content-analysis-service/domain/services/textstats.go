package services

import "strings"

// TokenOverlapRatio reports the Jaccard similarity of the token sets of two
// texts. Empty input yields 0, not an error.
func TokenOverlapRatio(a string, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	intersection := 0
	for token := range tokensA {
		if _, ok := tokensB[token]; ok {
			intersection++
		}
	}
	union := len(tokensA) + len(tokensB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// PopulationVariance returns the population variance of the series.
// Empty input yields 0, not an error.
func PopulationVariance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, value := range values {
		sum += value
	}
	mean := sum / float64(len(values))

	squared := 0.0
	for _, value := range values {
		delta := value - mean
		squared += delta * delta
	}
	return squared / float64(len(values))
}

func tokenSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		token := strings.Trim(field, ".,!?;:\"'()[]")
		if token == "" {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
