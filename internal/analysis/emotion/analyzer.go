package emotion

import (
	"math"
	"strings"
)

// Label 表示角色可以呈现的情绪标签。
type Label string

const (
	Neutral  Label = "neutral"
	Happy    Label = "happy"
	Sad      Label = "sad"
	Angry    Label = "angry"
	Excited  Label = "excited"
	Tender   Label = "tender"
	Comfort  Label = "comfort"
	Magnetic Label = "magnetic"
)

// Decision 给出情绪识别结果以及推荐情绪强度。
type Decision struct {
	Emotion Label
	Scale   float32
	Score   int
}

var keywordBuckets = map[Label][]string{
	Happy: {
		"happy", "glad", "great", "thanks", "thank you", "love", "nice", "well done", "awesome", "haha",
		"lol", "yay", "perfect", "good job", "friend", "reward", "gift", "heal",
	},
	Sad: {
		"sad", "sorry", "lost", "lonely", "cry", "hurt", "miss", "failed", "grief", "alone", "tired",
		"fallen", "gone", "broken", "defeat",
	},
	Angry: {
		"angry", "hate", "furious", "rage", "mad", "annoyed", "attack", "betray", "enemy", "damn",
		"kill", "destroy", "stupid", "traitor",
	},
	Excited: {
		"wow", "amazing", "incredible", "let's go", "can't wait", "hype", "epic", "jump", "dash",
		"boost", "victory", "win", "treasure", "run",
	},
	Tender: {
		"gentle", "soft", "calm", "quiet", "slowly", "careful", "rest", "sleep", "peace", "whisper",
	},
	Comfort: {
		"don't worry", "it's okay", "i'm here", "safe", "breathe", "take it easy", "together", "protect",
		"help", "support",
	},
	Magnetic: {
		"focus", "serious", "important", "must", "critical", "plan", "mission", "order", "objective",
		"strategy", "listen",
	},
}

var punctuationBoost = map[Label]int{
	Happy:   2,
	Excited: 3,
}

// Analyze 根据一段文本推断情绪。
func Analyze(text string) Decision {
	score := scoreText(text)
	if score.Score == 0 {
		return Decision{Emotion: Neutral, Scale: 3, Score: 0}
	}

	scale := 2 + float32(score.Score)/4
	if score.Emotion == Excited {
		scale += 1
	}
	if score.Emotion == Magnetic {
		scale = float32(math.Min(4.0, float64(scale)))
	}
	if score.Emotion == Comfort || score.Emotion == Tender {
		scale = float32(math.Min(3.5, float64(scale)))
	}

	return Decision{Emotion: score.Emotion, Scale: clamp(scale), Score: score.Score}
}

// Respond 推断角色在听到对方情绪后应当呈现的情绪，例如对悲伤报以安慰。
func Respond(heard Decision) Label {
	switch heard.Emotion {
	case Sad:
		return Comfort
	case Angry:
		return Magnetic
	case Tender, Comfort:
		return Tender
	case Excited, Happy:
		return heard.Emotion
	default:
		return Neutral
	}
}

// Parse 将字符串转换为已知标签。
func Parse(raw string) (Label, bool) {
	switch Label(strings.ToLower(strings.TrimSpace(raw))) {
	case Neutral:
		return Neutral, true
	case Happy:
		return Happy, true
	case Sad:
		return Sad, true
	case Angry:
		return Angry, true
	case Excited:
		return Excited, true
	case Tender:
		return Tender, true
	case Comfort:
		return Comfort, true
	case Magnetic:
		return Magnetic, true
	default:
		return "", false
	}
}

func scoreText(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Emotion: Neutral}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	exclamations := strings.Count(text, "!")
	if exclamations > 0 {
		scores[Excited] += exclamations * punctuationBoost[Excited]
		if exclamations == 1 {
			scores[Happy] += punctuationBoost[Happy]
		}
	}

	bestLabel := Neutral
	bestScore := 0
	for _, label := range labelOrder {
		if s := scores[label]; s > bestScore {
			bestScore = s
			bestLabel = label
		}
	}

	return Decision{Emotion: bestLabel, Score: bestScore}
}

// labelOrder keeps tie-breaking deterministic.
var labelOrder = []Label{Angry, Sad, Excited, Happy, Comfort, Tender, Magnetic}

func clamp(scale float32) float32 {
	if scale < 1 {
		return 1
	}
	if scale > 5 {
		return 5
	}
	return scale
}
