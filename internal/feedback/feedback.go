// Package feedback maps classification results to the canned coaching
// messages shown to students.
package feedback

// Behavior labels the zero-shot classifier scores against.
const (
	LabelSafe          = "Safe behavior"
	LabelRisky         = "Risky behavior"
	LabelRespectful    = "Respectful"
	LabelDisrespectful = "Disrespectful"
)

// Labels returns the candidate labels in a stable order.
func Labels() []string {
	return []string{LabelSafe, LabelRisky, LabelRespectful, LabelDisrespectful}
}

var bank = map[string]string{
	LabelSafe:          "Great choice—this protects your privacy and keeps you safe online.",
	LabelRisky:         "Think twice—this choice could expose personal info or lead to unsafe interactions.",
	LabelRespectful:    "Nice! That supports a positive, kind online community.",
	LabelDisrespectful: "Consider how this might make others feel—let's try a more considerate approach.",
}

const (
	defaultMessage = "Good effort—let's keep improving!"
	emptyMessage   = "Good effort—let's keep improving our digital choices."
)

// ForLabelScores picks the message for the highest-scoring label. An empty
// score map gets the neutral default.
func ForLabelScores(scores map[string]float64) string {
	if len(scores) == 0 {
		return emptyMessage
	}

	var top string
	best := -1.0
	for label, score := range scores {
		if score > best || (score == best && label < top) {
			top = label
			best = score
		}
	}

	if msg, ok := bank[top]; ok {
		return msg
	}
	return defaultMessage
}
