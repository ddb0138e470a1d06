package feedback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForLabelScoresPicksTopLabel(t *testing.T) {
	msg := ForLabelScores(map[string]float64{
		LabelSafe:          0.91,
		LabelRisky:         0.12,
		LabelRespectful:    0.40,
		LabelDisrespectful: 0.05,
	})
	assert.Contains(t, msg, "protects your privacy")

	msg = ForLabelScores(map[string]float64{
		LabelRisky:      0.88,
		LabelRespectful: 0.30,
	})
	assert.Contains(t, msg, "Think twice")
}

func TestForLabelScoresEmpty(t *testing.T) {
	msg := ForLabelScores(nil)
	assert.True(t, strings.HasPrefix(msg, "Good effort"))
}

func TestForLabelScoresUnknownLabel(t *testing.T) {
	msg := ForLabelScores(map[string]float64{"Something else": 0.99})
	assert.Equal(t, "Good effort—let's keep improving!", msg)
}

func TestLabelsStableOrder(t *testing.T) {
	assert.Equal(t, []string{LabelSafe, LabelRisky, LabelRespectful, LabelDisrespectful}, Labels())
}
