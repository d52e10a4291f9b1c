package relay

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/auranova/uebridge/internal/model/envelope"
)

type fakeAgent struct {
	decision    envelope.Decision
	decisionErr error
	line        string
	lineErr     error
	learnErr    error
	mood        string

	mu         sync.Mutex
	learned    []envelope.Experience
	gotOptions []any
	gotContext map[string]any
}

func (a *fakeAgent) MakeDecision(_ context.Context, options []any, situation map[string]any, _ map[string]any) (envelope.Decision, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gotOptions = options
	a.gotContext = situation
	return a.decision, a.decisionErr
}

func (a *fakeAgent) GenerateDialogue(_ context.Context, _ map[string]any) (string, error) {
	return a.line, a.lineErr
}

func (a *fakeAgent) LearnFromConsequence(_ context.Context, exp envelope.Experience) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.learned = append(a.learned, exp)
	return a.learnErr
}

func (a *fakeAgent) experiences() []envelope.Experience {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]envelope.Experience(nil), a.learned...)
}

func (a *fakeAgent) CurrentMood() string {
	return a.mood
}

func collectiveOf(agents map[string]*fakeAgent) Collective {
	return CollectiveFunc(func(name string) (Agent, bool) {
		a, ok := agents[name]
		if !ok {
			return nil, false
		}
		return a, true
	})
}

func dispatch(t *testing.T, r *Registry, raw map[string]any) any {
	t.Helper()
	return r.DispatchRaw(context.Background(), raw)
}

func TestDecisionWithoutCollective(t *testing.T) {
	r := NewRegistry(nil, zap.NewNop())

	resp := dispatch(t, r, map[string]any{
		"command":    "decision_request",
		"agent_name": "Cipher",
		"options":    []any{"idle", "dash"},
	})

	assert.Equal(t, envelope.Wait("no decision source available"), resp)
}

func TestDecisionUnknownAgentNamesAgent(t *testing.T) {
	r := NewRegistry(collectiveOf(nil), zap.NewNop())

	resp := dispatch(t, r, map[string]any{"command": "decision_request", "agent_name": "Ghost"})

	wait, ok := resp.(envelope.WaitResponse)
	require.True(t, ok)
	assert.Equal(t, "wait", wait.Action)
	assert.Contains(t, wait.Reasoning, "Ghost")
}

func TestDecisionFillsDefaults(t *testing.T) {
	agent := &fakeAgent{}
	r := NewRegistry(collectiveOf(map[string]*fakeAgent{"Cipher": agent}), zap.NewNop())

	resp := dispatch(t, r, map[string]any{
		"command":    "decision_request",
		"agent_name": "Cipher",
		"options":    []any{"idle"},
		"context":    map[string]any{"hp": 3.0},
	})

	d, ok := resp.(envelope.DecisionResponse)
	require.True(t, ok)
	assert.Equal(t, "wait", d.Action)
	assert.Equal(t, map[string]any{}, d.Parameters)
	assert.Equal(t, "no explanation", d.Reasoning)
	assert.Nil(t, d.Emotion)
	assert.Equal(t, []any{"idle"}, agent.gotOptions)
	assert.Equal(t, 3.0, agent.gotContext["hp"])
}

func TestDecisionUsesAgentResult(t *testing.T) {
	agent := &fakeAgent{
		decision: envelope.Decision{Action: "dash", Parameters: map[string]any{"dir": "left"}, Reasoning: "threat"},
		mood:     "angry",
	}
	r := NewRegistry(collectiveOf(map[string]*fakeAgent{"Vex": agent}), zap.NewNop())

	resp := dispatch(t, r, map[string]any{"command": "decision_request", "agent_name": "Vex"})

	d, ok := resp.(envelope.DecisionResponse)
	require.True(t, ok)
	assert.Equal(t, "dash", d.Action)
	assert.Equal(t, "left", d.Parameters["dir"])
	assert.Equal(t, "threat", d.Reasoning)
	require.NotNil(t, d.Emotion)
	assert.Equal(t, "angry", *d.Emotion)
}

func TestDecisionErrorDegradesToWait(t *testing.T) {
	agent := &fakeAgent{decisionErr: errors.New("model offline")}
	r := NewRegistry(collectiveOf(map[string]*fakeAgent{"Cipher": agent}), zap.NewNop())

	resp := dispatch(t, r, map[string]any{"command": "decision_request", "agent_name": "Cipher"})

	wait, ok := resp.(envelope.WaitResponse)
	require.True(t, ok)
	assert.Contains(t, wait.Reasoning, "model offline")
}

func TestDialoguePlaceholders(t *testing.T) {
	none := NewRegistry(nil, zap.NewNop())
	resp := dispatch(t, none, map[string]any{"command": "dialogue_request", "agent_name": "Cipher"})
	assert.Equal(t, envelope.DialogueResponse{Dialogue: "I have nothing to say."}, resp)

	empty := NewRegistry(collectiveOf(nil), zap.NewNop())
	resp = dispatch(t, empty, map[string]any{"command": "dialogue_request", "agent_name": "Cipher"})
	assert.Equal(t, envelope.DialogueResponse{Dialogue: "I am not yet conscious."}, resp)
}

func TestDialogueFromAgent(t *testing.T) {
	agent := &fakeAgent{line: "Stay close.", mood: "tender"}
	r := NewRegistry(collectiveOf(map[string]*fakeAgent{"Echo": agent}), zap.NewNop())

	resp := dispatch(t, r, map[string]any{"command": "dialogue_request", "agent_name": "Echo"})

	d, ok := resp.(envelope.DialogueResponse)
	require.True(t, ok)
	assert.Equal(t, "Stay close.", d.Dialogue)
	require.NotNil(t, d.Emotion)
	assert.Equal(t, "tender", *d.Emotion)
}

func TestInputRecordsExperienceOnce(t *testing.T) {
	agent := &fakeAgent{}
	r := NewRegistry(collectiveOf(map[string]*fakeAgent{"Cipher": agent}), zap.NewNop())

	resp := dispatch(t, r, map[string]any{
		"command":    "input_received",
		"agent_name": "Cipher",
		"input_type": "jump",
	})

	assert.Equal(t, envelope.InputResponse{Processed: true}, resp)
	require.Len(t, agent.learned, 1)
	assert.Equal(t, "player_input", agent.learned[0].Type)
	assert.Equal(t, "jump", agent.learned[0].Input)
	assert.Equal(t, "neutral", agent.learned[0].Outcome)
	assert.Equal(t, 0.5, agent.learned[0].Magnitude)
}

func TestInputNotProcessed(t *testing.T) {
	none := NewRegistry(nil, zap.NewNop())
	assert.Equal(t, envelope.InputResponse{Processed: false},
		dispatch(t, none, map[string]any{"command": "input_received", "agent_name": "Cipher"}))

	failing := &fakeAgent{learnErr: errors.New("memory full")}
	r := NewRegistry(collectiveOf(map[string]*fakeAgent{"Cipher": failing}), zap.NewNop())
	assert.Equal(t, envelope.InputResponse{Processed: false},
		dispatch(t, r, map[string]any{"command": "input_received", "agent_name": "Cipher"}))
}

func TestUnknownCommand(t *testing.T) {
	r := NewRegistry(nil, zap.NewNop())

	resp := dispatch(t, r, map[string]any{"foo": "bar"})

	assert.Equal(t, envelope.StatusResponse{Status: "unknown_command"}, resp)
	assert.Equal(t, int64(1), r.Metrics().Snapshot()["unknown_commands"])
}

func TestCustomHandlerTakesPrecedence(t *testing.T) {
	r := NewRegistry(nil, zap.NewNop())
	require.NoError(t, r.Register("decision_request", func(context.Context, *envelope.Request) (any, error) {
		return map[string]any{"custom": true}, nil
	}))

	resp := dispatch(t, r, map[string]any{"command": "decision_request"})

	assert.Equal(t, map[string]any{"custom": true}, resp)
}

func TestLastRegistrationWins(t *testing.T) {
	r := NewRegistry(nil, zap.NewNop())
	require.NoError(t, r.Register("spawn_character", func(context.Context, *envelope.Request) (any, error) {
		return "first", nil
	}))
	require.NoError(t, r.Register("spawn_character", func(context.Context, *envelope.Request) (any, error) {
		return "second", nil
	}))

	assert.Equal(t, "second", dispatch(t, r, map[string]any{"command": "spawn_character"}))
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry(nil, zap.NewNop())
	assert.Error(t, r.Register("", func(context.Context, *envelope.Request) (any, error) { return nil, nil }))
	assert.Error(t, r.Register("x", nil))

	r.freeze()
	err := r.Register("x", func(context.Context, *envelope.Request) (any, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrRegistryFrozen)
}

func TestHandlerErrorAndPanic(t *testing.T) {
	r := NewRegistry(nil, zap.NewNop())
	require.NoError(t, r.Register("boom", func(context.Context, *envelope.Request) (any, error) {
		panic("kaboom")
	}))
	require.NoError(t, r.Register("fail", func(context.Context, *envelope.Request) (any, error) {
		return nil, errors.New("bad input")
	}))

	panicked, ok := dispatch(t, r, map[string]any{"command": "boom"}).(envelope.StatusResponse)
	require.True(t, ok)
	assert.Equal(t, "error", panicked.Status)
	assert.Contains(t, panicked.Error, "kaboom")

	failed, ok := dispatch(t, r, map[string]any{"command": "fail"}).(envelope.StatusResponse)
	require.True(t, ok)
	assert.Equal(t, envelope.StatusResponse{Status: "error", Error: "bad input"}, failed)

	assert.Equal(t, int64(2), r.Metrics().Snapshot()["handler_failures"])
}

func TestDispatchJSON(t *testing.T) {
	r := NewRegistry(nil, zap.NewNop())

	for _, payload := range []string{`null`, `"text"`, `[1]`, `{bad`} {
		resp := r.DispatchJSON(context.Background(), []byte(payload))
		status, ok := resp.(envelope.StatusResponse)
		require.True(t, ok, payload)
		assert.Equal(t, "invalid_request", status.Status, payload)
	}

	assert.Equal(t, envelope.StatusResponse{Status: "unknown_command"},
		r.DispatchJSON(context.Background(), []byte(`{"foo":"bar"}`)))
	assert.Equal(t, int64(4), r.Metrics().Snapshot()["decode_errors"])
}
