package consciousness

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/auranova/uebridge/internal/model/agent"
	"github.com/auranova/uebridge/internal/model/envelope"
)

type stubMind struct {
	reply string
	err   error
	calls int
}

func (m *stubMind) Complete(_ context.Context, _, _ string) (string, error) {
	m.calls++
	return m.reply, m.err
}

func newCollective(t *testing.T, mind Mind, limit int) *Collective {
	t.Helper()
	return NewCollective(agent.NewMemoryStore(agent.Seed()), mind, Config{MemoryLimit: limit}, zap.NewNop())
}

func TestCollectiveRoster(t *testing.T) {
	c := newCollective(t, nil, 0)

	assert.Equal(t, []string{"Cipher", "Nova", "Echo", "Vex", "Sol"}, c.Names())
	a, ok := c.Agent("Vex")
	require.True(t, ok)
	assert.Equal(t, "angry", a.CurrentMood())

	_, ok = c.Agent("Ghost")
	assert.False(t, ok)
}

func TestDecisionByMoodPrefersMatchingOption(t *testing.T) {
	c := newCollective(t, nil, 0)
	vex, _ := c.Agent("Vex")

	d, err := vex.MakeDecision(context.Background(), []any{"idle", "attack_nearest"}, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "attack_nearest", d.Action)
	assert.Contains(t, d.Reasoning, "angry")
}

func TestDecisionByMoodFallbacks(t *testing.T) {
	c := newCollective(t, nil, 0)
	cipher, _ := c.Agent("Cipher")

	d, err := cipher.MakeDecision(context.Background(), []any{"sing", "dance"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "sing", d.Action)

	d, err = cipher.MakeDecision(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "wait", d.Action)

	d, err = cipher.MakeDecision(context.Background(), []any{map[string]any{"action": "patrol_route"}}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "patrol_route", d.Action)
}

func TestDecisionIsRemembered(t *testing.T) {
	c := newCollective(t, nil, 0)
	nova, _ := c.Agent("Nova")

	_, err := nova.MakeDecision(context.Background(), []any{"dash"}, nil, nil)
	require.NoError(t, err)

	records := nova.Memory().Recent(0)
	require.Len(t, records, 1)
	assert.Equal(t, KindDecision, records[0].Kind)
	require.NotNil(t, records[0].Decision)
	assert.Equal(t, "Nova", records[0].Decision.AgentName)
	assert.Equal(t, "dash", records[0].Decision.Action)
	assert.Equal(t, "excited", records[0].Decision.Emotion)
	assert.NotEmpty(t, records[0].ID)
}

func TestDecisionWithMind(t *testing.T) {
	mind := &stubMind{reply: "```json\n{\"action\":\"dash\",\"parameters\":{\"dir\":\"left\"},\"reasoning\":\"cover\",\"emotion\":\"excited\"}\n```"}
	c := newCollective(t, mind, 0)
	cipher, _ := c.Agent("Cipher")

	d, err := cipher.MakeDecision(context.Background(), []any{"idle", "dash"}, map[string]any{"threat": true}, nil)

	require.NoError(t, err)
	assert.Equal(t, envelope.Decision{Action: "dash", Parameters: map[string]any{"dir": "left"}, Reasoning: "cover"}, d)
	assert.Equal(t, "excited", cipher.CurrentMood())
	assert.Equal(t, 1, mind.calls)
	assert.Equal(t, 0.8, cipher.Memory().Recent(1)[0].Decision.Confidence)
}

func TestDecisionMindFailureFallsBackToMood(t *testing.T) {
	for _, mind := range []*stubMind{
		{err: errors.New("offline")},
		{reply: "no json at all"},
		{reply: `{"action":"fly"}`},
	} {
		c := newCollective(t, mind, 0)
		vex, _ := c.Agent("Vex")

		d, err := vex.MakeDecision(context.Background(), []any{"idle", "charge"}, nil, nil)

		require.NoError(t, err)
		assert.Equal(t, "charge", d.Action)
	}
}

func TestLearnFromConsequenceShiftsMood(t *testing.T) {
	c := newCollective(t, nil, 0)
	echo, _ := c.Agent("Echo")

	require.NoError(t, echo.LearnFromConsequence(context.Background(), envelope.Experience{Type: "combat", Outcome: "damage", Magnitude: 0.9}))
	assert.Equal(t, "angry", echo.CurrentMood())

	require.NoError(t, echo.LearnFromConsequence(context.Background(), envelope.PlayerInput("jump")))
	assert.Equal(t, "angry", echo.CurrentMood())

	records := echo.Memory().Recent(0)
	require.Len(t, records, 2)
	assert.Equal(t, "jump", records[1].Experience.Input)

	assert.Error(t, echo.LearnFromConsequence(context.Background(), envelope.Experience{}))
}

func TestMemoryIsBounded(t *testing.T) {
	c := newCollective(t, nil, 3)
	sol, _ := c.Agent("Sol")

	for _, input := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, sol.LearnFromConsequence(context.Background(), envelope.PlayerInput(input)))
	}

	records := sol.Memory().Recent(0)
	require.Len(t, records, 3)
	assert.Equal(t, "c", records[0].Experience.Input)
	assert.Equal(t, "e", records[2].Experience.Input)
	assert.Len(t, sol.Memory().Recent(2), 2)
}

func TestDialogue(t *testing.T) {
	c := newCollective(t, nil, 0)
	nova, _ := c.Agent("Nova")

	line, err := nova.GenerateDialogue(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Come on, let's go!", line)

	line, err = nova.GenerateDialogue(context.Background(), map[string]any{"player_line": "I lost everything, I feel so alone"})
	require.NoError(t, err)
	assert.Equal(t, "comfort", nova.CurrentMood())
	assert.Equal(t, "It's alright. We're safe here.", line)

	cipher, _ := c.Agent("Cipher")
	line, err = cipher.GenerateDialogue(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, cipher.Profile().OpeningLine, line)
}

func TestDialogueWithMind(t *testing.T) {
	c := newCollective(t, &stubMind{reply: "  \"Hold the line.\"  "}, 0)
	sol, _ := c.Agent("Sol")

	line, err := sol.GenerateDialogue(context.Background(), map[string]any{"event": "siege"})

	require.NoError(t, err)
	assert.Equal(t, "Hold the line.", line)
}

func TestSnapshot(t *testing.T) {
	c := newCollective(t, nil, 0)
	echo, _ := c.Agent("Echo")
	require.NoError(t, echo.LearnFromConsequence(context.Background(), envelope.PlayerInput("wave")))

	snap, ok := c.Snapshot("Echo", 10)
	require.True(t, ok)
	assert.Equal(t, "Echo", snap.Profile.Name)
	assert.Equal(t, "tender", snap.Mood)
	assert.Len(t, snap.Memory, 1)

	_, ok = c.Snapshot("Ghost", 10)
	assert.False(t, ok)
}
