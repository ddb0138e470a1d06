package rules

import (
	"fmt"
	"math"
	"strings"
)

// Risk labels, a deterministic function of the normalized score.
const (
	LabelLow    = "Low Risk"
	LabelMedium = "Medium Risk"
	LabelHigh   = "High Risk"
)

const disclaimer = "This is a simple rule-based demo. It can miss context or sarcasm."

// AnalysisResult is the outcome of scoring one piece of text.
type AnalysisResult struct {
	Text      string   `json:"text"`
	Label     string   `json:"label"`
	RiskScore float64  `json:"risk_score_0_10"`
	Matches   []string `json:"matches"`
	Notes     string   `json:"notes"`
}

// Analyzer scores text against a fixed rule table. It holds no mutable
// state, so a single instance is safe for concurrent use.
type Analyzer struct {
	ruleSet  RuleSet
	maxScore int
}

func NewAnalyzer(rs RuleSet) *Analyzer {
	return &Analyzer{
		ruleSet:  rs,
		maxScore: rs.MaxScore(),
	}
}

// Analyze evaluates the text and returns a 0-10 risk score, a label, and
// the matched-reason strings. It is a total function: any string input,
// including empty and non-ASCII text, produces a result.
func (a *Analyzer) Analyze(text string) AnalysisResult {
	// Space padding allows whole-word matching via substring search; the
	// punctuation-stripped variant catches keywords adjacent to , ! or .
	padded := " " + strings.ToLower(strings.TrimSpace(text)) + " "
	stripped := strings.NewReplacer(",", " ", "!", " ", ".", " ").Replace(padded)

	type hit struct {
		rule    Rule
		keyword string
	}
	var hits []hit
	score := 0

	for _, r := range a.ruleSet.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(padded, " "+kw+" ") || strings.Contains(stripped, kw) {
				hits = append(hits, hit{rule: r, keyword: kw})
				score += r.Weight
			}
		}
	}

	// Gentle reduction when polite markers are present, one point per
	// marker, never below zero.
	for _, m := range a.ruleSet.SafeToneMarkers {
		if strings.Contains(padded, m) {
			score = max(0, score-1)
		}
	}

	risk := round2(math.Min(10, float64(score)/float64(a.maxScore)*10))

	var label string
	switch {
	case risk >= 7:
		label = LabelHigh
	case risk >= 4:
		label = LabelMedium
	default:
		label = LabelLow
	}

	var matches []string
	for _, h := range hits {
		matches = append(matches, fmt.Sprintf("%s (matched: “%s”)", h.rule.Explanation, h.keyword))
	}
	if len(matches) == 0 {
		matches = []string{"No risky patterns found"}
	}

	return AnalysisResult{
		Text:      text,
		Label:     label,
		RiskScore: risk,
		Matches:   matches,
		Notes:     disclaimer,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
