package ai

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/auranova/uebridge/internal/config"
	"github.com/auranova/uebridge/internal/model/agent"
)

type fakeChatModel struct {
	mu    sync.Mutex
	reply string
	err   error
	seen  [][]*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.mu.Lock()
	f.seen = append(f.seen, input)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (f *fakeChatModel) BindTools(_ []*schema.ToolInfo) error {
	return nil
}

func (f *fakeChatModel) lastInput() []*schema.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.seen) == 0 {
		return nil
	}
	return f.seen[len(f.seen)-1]
}

func newTestService(t *testing.T, fake *fakeChatModel) *Service {
	t.Helper()
	svc, err := NewServiceWithModel(context.Background(), fake, config.AIConfig{Model: "local-model"}, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestCompleteSendsSystemAndQuery(t *testing.T) {
	fake := &fakeChatModel{reply: "Keep moving."}
	svc := newTestService(t, fake)

	out, err := svc.Complete(context.Background(), "You are Nova.", "What now?")

	require.NoError(t, err)
	assert.Equal(t, "Keep moving.", out)
	input := fake.lastInput()
	require.Len(t, input, 2)
	assert.Equal(t, schema.System, input[0].Role)
	assert.Equal(t, "You are Nova.", input[0].Content)
	assert.Equal(t, schema.User, input[1].Role)
	assert.Equal(t, "What now?", input[1].Content)
}

func TestPromptSendsSingleUserMessage(t *testing.T) {
	fake := &fakeChatModel{reply: `{"ok":true}`}
	svc := newTestService(t, fake)

	out, err := svc.Prompt(context.Background(), `Traits: {"speed": 3}`)

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	input := fake.lastInput()
	require.Len(t, input, 1)
	assert.Equal(t, schema.User, input[0].Role)
	assert.Equal(t, `Traits: {"speed": 3}`, input[0].Content)
}

func TestCompleteErrors(t *testing.T) {
	svc := newTestService(t, &fakeChatModel{err: errors.New("connection refused")})
	_, err := svc.Complete(context.Background(), "s", "q")
	assert.ErrorContains(t, err, "connection refused")

	empty := newTestService(t, &fakeChatModel{reply: "   "})
	_, err = empty.Prompt(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestNewServiceWithoutModel(t *testing.T) {
	_, err := NewServiceWithModel(context.Background(), nil, config.AIConfig{}, nil)
	assert.Error(t, err)

	_, err = NewService(context.Background(), config.AIConfig{Enabled: false}, nil)
	assert.Error(t, err)
}

func TestBuildSystemPromptIncludesProfileAndMood(t *testing.T) {
	profile := agent.Profile{
		Name:       "Vex",
		Title:      "Demolitions expert",
		Tone:       "sharp",
		Traits:     []string{"reckless", "blunt"},
		PromptHint: "Favour loud solutions.",
	}

	out := BuildSystemPrompt(profile, "angry")

	assert.Contains(t, out, "You are Vex, Demolitions expert")
	assert.Contains(t, out, "reckless, blunt")
	assert.Contains(t, out, "Favour loud solutions.")
	assert.Contains(t, out, "irritated")
	assert.NotContains(t, BuildSystemPrompt(profile, "unknown"), "Current mood")
}

func TestExtractJSON(t *testing.T) {
	raw, err := ExtractJSON("Sure!\n```json\n{\"a\": {\"b\": 1}}\n```\nEnjoy.")
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, raw)

	_, err = ExtractJSON("no braces here")
	assert.ErrorIs(t, err, ErrNoJSONObject)

	var out struct {
		Action string `json:"action"`
	}
	require.NoError(t, DecodeJSON(`reply: {"action":"dash"}`, &out))
	assert.Equal(t, "dash", out.Action)
}

func TestDecisionQueryListsOptions(t *testing.T) {
	q := DecisionQuery([]any{"idle", "dash"}, map[string]any{"hp": 3}, nil)
	assert.Contains(t, q, `["idle","dash"]`)
	assert.Contains(t, q, `{"hp":3}`)
	assert.NotContains(t, q, "Additional context")
}
