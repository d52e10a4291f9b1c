package envelope

// Commands understood by the engine protocol.
const (
	CommandDecisionRequest = "decision_request"
	CommandDialogueRequest = "dialogue_request"
	CommandInputReceived   = "input_received"

	// Reported by the engine but only handled when a custom handler is registered.
	CommandSpawnCharacter  = "spawn_character"
	CommandCollisionEvent  = "collision_event"
	CommandGameStateUpdate = "game_state_update"

	// Pushed to the engine editor when a watched source file changes.
	CommandLiveReload = "live_reload"
)

// Kind classifies a command into one of the built-in behaviours.
type Kind int

const (
	KindCustom Kind = iota
	KindDecision
	KindDialogue
	KindInput
)

func (k Kind) String() string {
	switch k {
	case KindDecision:
		return "decision"
	case KindDialogue:
		return "dialogue"
	case KindInput:
		return "input"
	default:
		return "custom"
	}
}

// Classify maps a command name to its kind. Anything that is not a built-in is KindCustom.
func Classify(command string) Kind {
	switch command {
	case CommandDecisionRequest:
		return KindDecision
	case CommandDialogueRequest:
		return KindDialogue
	case CommandInputReceived:
		return KindInput
	default:
		return KindCustom
	}
}
