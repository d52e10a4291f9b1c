package emotion

import "strings"

// Shift returns the mood that follows a consequence with the given outcome and magnitude.
// Neutral outcomes leave the mood untouched unless they are strong enough to calm the agent.
func Shift(current Label, outcome string, magnitude float64) Label {
	if current == "" {
		current = Neutral
	}

	switch strings.ToLower(strings.TrimSpace(outcome)) {
	case "positive", "success", "reward":
		if magnitude >= 0.7 {
			return Excited
		}
		return Happy
	case "negative", "failure", "damage":
		if magnitude >= 0.7 {
			return Angry
		}
		return Sad
	case "comfort", "rest":
		return Tender
	default:
		if magnitude >= 0.8 {
			return Neutral
		}
		return current
	}
}
