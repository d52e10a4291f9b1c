package ai

import (
	"fmt"
	"strings"

	"github.com/auranova/uebridge/internal/analysis/emotion"
	"github.com/auranova/uebridge/internal/model/agent"
)

// BuildSystemPrompt describes the character an agent plays, including its current mood.
func BuildSystemPrompt(profile agent.Profile, mood string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %s, a character in a running game.\n\n", profile.Name, profile.Title)
	b.WriteString("Character:\n")
	fmt.Fprintf(&b, "- Name: %s\n", profile.Name)
	fmt.Fprintf(&b, "- Tone: %s\n", profile.Tone)
	if len(profile.Traits) > 0 {
		fmt.Fprintf(&b, "- Traits: %s\n", strings.Join(profile.Traits, ", "))
	}
	if profile.Background != "" {
		fmt.Fprintf(&b, "- Background: %s\n", profile.Background)
	}
	if profile.PromptHint != "" {
		fmt.Fprintf(&b, "- Guidance: %s\n", profile.PromptHint)
	}

	if desc := describeMood(emotion.Label(mood)); desc != "" {
		b.WriteString("\nCurrent mood: ")
		b.WriteString(desc)
		b.WriteString("\n")
	}

	b.WriteString("\nStay in character. Keep answers short enough to be used directly by the game.")
	return b.String()
}

// DecisionQuery asks for one of the offered actions as a JSON object.
func DecisionQuery(options []any, situation map[string]any, extra map[string]any) string {
	var b strings.Builder
	b.WriteString("Choose your next action.\n\n")
	fmt.Fprintf(&b, "Available actions: %s\n", compactJSON(options))
	fmt.Fprintf(&b, "Situation: %s\n", compactJSON(situation))
	if len(extra) > 0 {
		fmt.Fprintf(&b, "Additional context: %s\n", compactJSON(extra))
	}
	b.WriteString("\nReply with only a JSON object: ")
	b.WriteString(`{"action": "<one of the available actions>", "parameters": {}, "reasoning": "<one sentence>"}`)
	return b.String()
}

// DialogueQuery asks for a single spoken line.
func DialogueQuery(situation map[string]any) string {
	return fmt.Sprintf("Say one line of dialogue for this moment. Reply with the line only, no quotes.\n\nSituation: %s", compactJSON(situation))
}

func describeMood(label emotion.Label) string {
	switch label {
	case emotion.Happy:
		return "cheerful and upbeat; speak lightly."
	case emotion.Sad:
		return "downcast; speak quietly and hesitantly."
	case emotion.Angry:
		return "irritated; speak curtly and act decisively."
	case emotion.Excited:
		return "energised; speak quickly and favour bold moves."
	case emotion.Tender:
		return "caring; speak softly and look after others."
	case emotion.Comfort:
		return "settled and reassuring."
	case emotion.Magnetic:
		return "confident and commanding."
	case emotion.Neutral:
		return "calm and composed."
	default:
		return ""
	}
}
