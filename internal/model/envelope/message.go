package envelope

import "time"

// GameInput is a normalized input event reported by the engine.
type GameInput struct {
	Command    string         `json:"command"`
	AgentName  string         `json:"agent_name,omitempty"`
	InputType  string         `json:"input_type,omitempty"` // movement, action, dialogue
	Parameters map[string]any `json:"parameters"`
	Timestamp  float64        `json:"timestamp"`
}

// NewGameInput returns an input with empty parameters stamped with the current time.
func NewGameInput(command string) GameInput {
	return GameInput{
		Command:    command,
		Parameters: map[string]any{},
		Timestamp:  Now(),
	}
}

// AIDecision records a decision produced for an agent.
type AIDecision struct {
	AgentName  string         `json:"agent_name"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
	Confidence float64        `json:"confidence"`
	Reasoning  string         `json:"reasoning"`
	Emotion    string         `json:"emotion,omitempty"`
	Timestamp  float64        `json:"timestamp"`
}

// NewAIDecision stamps a decision with the current time. Confidence is stored as given.
func NewAIDecision(agentName, action string, parameters map[string]any, confidence float64, reasoning string) AIDecision {
	if parameters == nil {
		parameters = map[string]any{}
	}
	return AIDecision{
		AgentName:  agentName,
		Action:     action,
		Parameters: parameters,
		Confidence: confidence,
		Reasoning:  reasoning,
		Timestamp:  Now(),
	}
}

// Now returns the current time as fractional seconds since the Unix epoch.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
