package envelope

// Status values carried by StatusResponse.
const (
	StatusUnknownCommand = "unknown_command"
	StatusInvalidRequest = "invalid_request"
	StatusError          = "error"
)

// WaitResponse is returned when no decision source can answer.
type WaitResponse struct {
	Action    string `json:"action"`
	Reasoning string `json:"reasoning"`
}

// Wait builds a "wait" answer with the given explanation.
func Wait(reasoning string) WaitResponse {
	return WaitResponse{Action: "wait", Reasoning: reasoning}
}

// DecisionResponse answers a decision_request.
type DecisionResponse struct {
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
	Reasoning  string         `json:"reasoning"`
	Emotion    *string        `json:"emotion"`
}

// DialogueResponse answers a dialogue_request.
type DialogueResponse struct {
	Dialogue string  `json:"dialogue"`
	Emotion  *string `json:"emotion"`
}

// InputResponse answers an input_received notification.
type InputResponse struct {
	Processed bool `json:"processed"`
}

// StatusResponse reports a request that produced no domain answer.
type StatusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Mood converts a mood label to its wire form; an empty mood is encoded as null.
func Mood(mood string) *string {
	if mood == "" {
		return nil
	}
	return &mood
}
