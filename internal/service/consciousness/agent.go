package consciousness

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/auranova/uebridge/internal/analysis/emotion"
	"github.com/auranova/uebridge/internal/model/agent"
	"github.com/auranova/uebridge/internal/model/envelope"
	"github.com/auranova/uebridge/internal/service/ai"
)

const (
	llmConfidence       = 0.8
	heuristicConfidence = 0.5
)

// Mind answers a query in character. *ai.Service satisfies it.
type Mind interface {
	Complete(ctx context.Context, system, query string) (string, error)
}

// preferred lists, per mood, the action keywords an agent reaches for first.
var preferred = map[emotion.Label][]string{
	emotion.Angry:    {"attack", "charge", "fight", "dash"},
	emotion.Excited:  {"dash", "jump", "explore", "charge"},
	emotion.Happy:    {"explore", "talk", "jump", "follow"},
	emotion.Sad:      {"retreat", "rest", "idle", "wait"},
	emotion.Tender:   {"heal", "help", "protect", "follow"},
	emotion.Comfort:  {"rest", "talk", "heal", "idle"},
	emotion.Magnetic: {"lead", "command", "plan", "talk"},
	emotion.Neutral:  {"observe", "patrol", "idle", "wait"},
}

var moodLines = map[emotion.Label]string{
	emotion.Angry:    "Enough talk.",
	emotion.Excited:  "Come on, let's go!",
	emotion.Happy:    "Good to see you.",
	emotion.Sad:      "I... need a moment.",
	emotion.Tender:   "Easy now. I've got you.",
	emotion.Comfort:  "It's alright. We're safe here.",
	emotion.Magnetic: "Stay focused. Follow my lead.",
}

// Agent is one member of the collective: a profile plus mood and memory.
type Agent struct {
	profile agent.Profile
	mind    Mind
	memory  *Memory
	log     *zap.Logger

	mu   sync.RWMutex
	mood emotion.Label
}

func newAgent(profile agent.Profile, mind Mind, memoryLimit int, logger *zap.Logger) *Agent {
	mood, ok := emotion.Parse(profile.DefaultMood)
	if !ok {
		mood = emotion.Neutral
	}
	return &Agent{
		profile: profile,
		mind:    mind,
		memory:  NewMemory(memoryLimit),
		log:     logger.With(zap.String("agent", profile.Name)),
		mood:    mood,
	}
}

// Profile returns the agent's static description.
func (a *Agent) Profile() agent.Profile {
	return a.profile
}

// Memory exposes the agent's history.
func (a *Agent) Memory() *Memory {
	return a.memory
}

// CurrentMood returns the mood label.
func (a *Agent) CurrentMood() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return string(a.mood)
}

func (a *Agent) setMood(label emotion.Label) {
	a.mu.Lock()
	a.mood = label
	a.mu.Unlock()
}

// MakeDecision picks one of options for the situation. The language model is
// consulted when available; otherwise, or when it fails, the choice follows
// the agent's mood.
func (a *Agent) MakeDecision(ctx context.Context, options []any, situation map[string]any, extra map[string]any) (envelope.Decision, error) {
	decision, confidence, ok := a.decideWithMind(ctx, options, situation, extra)
	if !ok {
		decision = a.decideByMood(options)
		confidence = heuristicConfidence
	}

	record := envelope.NewAIDecision(a.profile.Name, decision.Action, decision.Parameters, confidence, decision.Reasoning)
	record.Emotion = a.CurrentMood()
	a.memory.Remember(Record{Kind: KindDecision, Decision: &record, Mood: record.Emotion})

	return decision, nil
}

type mindDecision struct {
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
	Reasoning  string         `json:"reasoning"`
	Emotion    string         `json:"emotion"`
}

func (a *Agent) decideWithMind(ctx context.Context, options []any, situation, extra map[string]any) (envelope.Decision, float64, bool) {
	if a.mind == nil {
		return envelope.Decision{}, 0, false
	}

	reply, err := a.mind.Complete(ctx, ai.BuildSystemPrompt(a.profile, a.CurrentMood()), ai.DecisionQuery(options, situation, extra))
	if err != nil {
		a.log.Warn("mind unavailable, deciding by mood", zap.Error(err))
		return envelope.Decision{}, 0, false
	}

	var out mindDecision
	if err := ai.DecodeJSON(reply, &out); err != nil {
		a.log.Warn("mind reply is not a decision, deciding by mood", zap.Error(err))
		return envelope.Decision{}, 0, false
	}
	if out.Action == "" || (len(options) > 0 && !offered(options, out.Action)) {
		a.log.Warn("mind chose an action that was not offered", zap.String("action", out.Action))
		return envelope.Decision{}, 0, false
	}
	if label, ok := emotion.Parse(out.Emotion); ok {
		a.setMood(label)
	}

	return envelope.Decision{
		Action:     out.Action,
		Parameters: out.Parameters,
		Reasoning:  out.Reasoning,
	}, llmConfidence, true
}

func (a *Agent) decideByMood(options []any) envelope.Decision {
	mood := emotion.Label(a.CurrentMood())
	names := optionNames(options)
	if len(names) == 0 {
		return envelope.Decision{Action: "wait", Reasoning: "nothing to choose from"}
	}

	for _, keyword := range preferred[mood] {
		for _, name := range names {
			if strings.Contains(strings.ToLower(name), keyword) {
				return envelope.Decision{
					Action:    name,
					Reasoning: fmt.Sprintf("feeling %s, %s suits me", mood, name),
				}
			}
		}
	}

	return envelope.Decision{
		Action:    names[0],
		Reasoning: fmt.Sprintf("feeling %s, taking the first option", mood),
	}
}

// GenerateDialogue produces one line for the situation. A "player_line" in the
// situation colours the agent's mood before it answers.
func (a *Agent) GenerateDialogue(ctx context.Context, situation map[string]any) (string, error) {
	if heard, _ := situation["player_line"].(string); heard != "" {
		if decision := emotion.Analyze(heard); decision.Score > 0 {
			a.setMood(emotion.Respond(decision))
		}
	}

	if a.mind != nil {
		line, err := a.mind.Complete(ctx, ai.BuildSystemPrompt(a.profile, a.CurrentMood()), ai.DialogueQuery(situation))
		if err == nil {
			return strings.Trim(strings.TrimSpace(line), `"`), nil
		}
		a.log.Warn("mind unavailable, using a stock line", zap.Error(err))
	}

	if line, ok := moodLines[emotion.Label(a.CurrentMood())]; ok {
		return line, nil
	}
	return a.profile.OpeningLine, nil
}

// LearnFromConsequence remembers the experience and shifts the mood accordingly.
func (a *Agent) LearnFromConsequence(_ context.Context, exp envelope.Experience) error {
	if exp.Type == "" {
		return fmt.Errorf("experience type is required")
	}

	a.mu.Lock()
	before := a.mood
	a.mood = emotion.Shift(a.mood, exp.Outcome, exp.Magnitude)
	after := a.mood
	a.mu.Unlock()

	a.memory.Remember(Record{Kind: KindExperience, Experience: &exp, Mood: string(after)})
	if before != after {
		a.log.Info("mood shifted", zap.String("from", string(before)), zap.String("to", string(after)))
	}
	return nil
}

func optionNames(options []any) []string {
	names := make([]string, 0, len(options))
	for _, opt := range options {
		switch v := opt.(type) {
		case string:
			if v != "" {
				names = append(names, v)
			}
		case map[string]any:
			for _, key := range []string{"action", "name", "id"} {
				if s, ok := v[key].(string); ok && s != "" {
					names = append(names, s)
					break
				}
			}
		}
	}
	return names
}

func offered(options []any, action string) bool {
	for _, name := range optionNames(options) {
		if name == action {
			return true
		}
	}
	return false
}
