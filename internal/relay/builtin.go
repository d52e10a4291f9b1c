package relay

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/auranova/uebridge/internal/model/envelope"
)

const (
	noDecisionSource = "no decision source available"
	noDialogueSource = "I have nothing to say."
	notYetConscious  = "I am not yet conscious."
)

// handleDecision answers "what should this character do?".
func (r *Registry) handleDecision(ctx context.Context, req *envelope.Request) any {
	if r.collective == nil {
		r.log.Warn("decision requested without a decision source", zap.String("agent", req.AgentName))
		return envelope.Wait(noDecisionSource)
	}

	agent, ok := r.lookup(req.AgentName)
	if !ok {
		r.log.Warn("no decision source for agent", zap.String("agent", req.AgentName))
		return envelope.Wait(fmt.Sprintf("no decision source for agent %q", req.AgentName))
	}

	decision, err := agent.MakeDecision(ctx, req.Options, req.Context, map[string]any{})
	if err != nil {
		r.log.Error("decision source failed", zap.String("agent", req.AgentName), zap.Error(err))
		return envelope.Wait(fmt.Sprintf("decision source for agent %q failed: %v", req.AgentName, err))
	}

	action := decision.Action
	if action == "" {
		action = "wait"
	}
	parameters := decision.Parameters
	if parameters == nil {
		parameters = map[string]any{}
	}
	reasoning := decision.Reasoning
	if reasoning == "" {
		reasoning = "no explanation"
	}

	r.log.Info("decision", zap.String("agent", req.AgentName), zap.String("action", action))

	return envelope.DecisionResponse{
		Action:     action,
		Parameters: parameters,
		Reasoning:  reasoning,
		Emotion:    envelope.Mood(agent.CurrentMood()),
	}
}

// handleDialogue answers "what should this character say?".
func (r *Registry) handleDialogue(ctx context.Context, req *envelope.Request) any {
	if r.collective == nil {
		return envelope.DialogueResponse{Dialogue: noDialogueSource}
	}

	agent, ok := r.lookup(req.AgentName)
	if !ok {
		return envelope.DialogueResponse{Dialogue: notYetConscious}
	}

	line, err := agent.GenerateDialogue(ctx, req.Context)
	if err != nil {
		r.log.Error("dialogue source failed", zap.String("agent", req.AgentName), zap.Error(err))
		return envelope.DialogueResponse{Dialogue: noDialogueSource, Emotion: envelope.Mood(agent.CurrentMood())}
	}

	r.log.Info("dialogue", zap.String("agent", req.AgentName), zap.String("line", preview(line, 50)))

	return envelope.DialogueResponse{
		Dialogue: line,
		Emotion:  envelope.Mood(agent.CurrentMood()),
	}
}

// handleInput records a player input as an experience for the agent.
func (r *Registry) handleInput(ctx context.Context, req *envelope.Request) any {
	agent, ok := r.lookup(req.AgentName)
	if !ok {
		return envelope.InputResponse{Processed: false}
	}

	if err := agent.LearnFromConsequence(ctx, envelope.PlayerInput(req.InputType)); err != nil {
		r.log.Error("recording input failed", zap.String("agent", req.AgentName), zap.Error(err))
		return envelope.InputResponse{Processed: false}
	}

	r.log.Info("recorded input", zap.String("agent", req.AgentName), zap.String("input", req.InputType))
	return envelope.InputResponse{Processed: true}
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
