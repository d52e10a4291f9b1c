package envelope

// Decision is what a decision source returns. Empty fields mean the source omitted them.
type Decision struct {
	Action     string         `json:"action,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Reasoning  string         `json:"reasoning,omitempty"`
}

// Experience is a consequence record fed to an agent's learning operation.
type Experience struct {
	Type      string  `json:"type"`
	Input     string  `json:"input"`
	Outcome   string  `json:"outcome"`
	Magnitude float64 `json:"magnitude"`
}

// PlayerInput is the fixed record produced for every input_received notification.
func PlayerInput(input string) Experience {
	return Experience{
		Type:      "player_input",
		Input:     input,
		Outcome:   "neutral",
		Magnitude: 0.5,
	}
}
