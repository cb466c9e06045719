package viral

import "strings"

// Difficulty buckets a template's free-text difficulty label.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyUnknown      Difficulty = "unknown"
)

// Potential buckets a script's free-text viral potential label.
type Potential string

const (
	PotentialVeryHigh Potential = "very-high"
	PotentialHigh     Potential = "high"
	PotentialMedium   Potential = "medium"
	PotentialLow      Potential = "low"
)

// ClassifyDifficulty matches keywords case-insensitively; first match wins.
func ClassifyDifficulty(label string) Difficulty {
	d := strings.ToLower(label)
	switch {
	case containsAny(d, "beginner", "easy"):
		return DifficultyBeginner
	case containsAny(d, "intermediate", "medium"):
		return DifficultyIntermediate
	case containsAny(d, "advanced", "hard", "expert"):
		return DifficultyAdvanced
	default:
		return DifficultyUnknown
	}
}

// ClassifyPotential matches keywords case-insensitively. "very high" is
// checked before "high"; anything unrecognised is low.
func ClassifyPotential(label string) Potential {
	p := strings.ToLower(label)
	switch {
	case containsAny(p, "very high", "excellent"):
		return PotentialVeryHigh
	case strings.Contains(p, "high"):
		return PotentialHigh
	case containsAny(p, "medium", "moderate"):
		return PotentialMedium
	default:
		return PotentialLow
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
