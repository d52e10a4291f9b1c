package envelope

// Request is a decoded engine request. Raw keeps the full object for custom handlers.
type Request struct {
	Command    string
	AgentName  string
	Context    map[string]any
	Options    []any
	InputType  string
	Parameters map[string]any
	Raw        map[string]any
}

// RequestFromMap builds a Request from a decoded JSON object. Missing or
// mistyped keys fall back to zero values; a missing command yields "".
func RequestFromMap(raw map[string]any) *Request {
	if raw == nil {
		raw = map[string]any{}
	}
	return &Request{
		Command:    stringField(raw, "command"),
		AgentName:  stringField(raw, "agent_name"),
		Context:    objectField(raw, "context"),
		Options:    arrayField(raw, "options"),
		InputType:  stringField(raw, "input_type"),
		Parameters: objectField(raw, "parameters"),
		Raw:        raw,
	}
}

// Kind reports which built-in, if any, handles the request.
func (r *Request) Kind() Kind {
	return Classify(r.Command)
}

// GameInput projects the request onto the input envelope.
func (r *Request) GameInput() GameInput {
	in := NewGameInput(r.Command)
	in.AgentName = r.AgentName
	in.InputType = r.InputType
	for k, v := range r.Parameters {
		in.Parameters[k] = v
	}
	if ts, ok := r.Raw["timestamp"].(float64); ok {
		in.Timestamp = ts
	}
	return in
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func objectField(raw map[string]any, key string) map[string]any {
	if v, ok := raw[key].(map[string]any); ok && v != nil {
		return v
	}
	return map[string]any{}
}

func arrayField(raw map[string]any, key string) []any {
	if v, ok := raw[key].([]any); ok && v != nil {
		return v
	}
	return []any{}
}
