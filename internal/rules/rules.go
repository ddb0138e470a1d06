package rules

// Rule is one category of risky language: a set of keyword phrases, a
// weight added to the running score per matched keyword, and a short
// explanation shown to the user.
type Rule struct {
	Name        string   `json:"name"`
	Keywords    []string `json:"keywords"`
	Weight      int      `json:"weight"`
	Explanation string   `json:"explanation"`
}

// RuleSet is an ordered, immutable collection of rules plus the safe-tone
// markers that discount the score. Construct once at startup and share.
type RuleSet struct {
	Rules           []Rule
	SafeToneMarkers []string
}

// MaxScore is the sum of all rule weights. It is the normalization
// denominator and must track the live rule table.
func (rs RuleSet) MaxScore() int {
	total := 0
	for _, r := range rs.Rules {
		total += r.Weight
	}
	return total
}

// DefaultRuleSet returns the built-in category rules and politeness markers.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Rules: []Rule{
			{
				Name:        "insult",
				Keywords:    []string{"idiot", "stupid", "dumb", "loser"},
				Weight:      3,
				Explanation: "Potential insult",
			},
			{
				Name:        "profanity",
				Keywords:    []string{"hell", "crap", "wtf"},
				Weight:      2,
				Explanation: "Contains profanity",
			},
			{
				Name:        "harassment",
				Keywords:    []string{"shut up", "nobody likes you", "go away"},
				Weight:      4,
				Explanation: "Harassing phrase",
			},
			{
				Name:        "threat",
				Keywords:    []string{"hurt you", "beat you", "find you", "kill"},
				Weight:      6,
				Explanation: "Possible threat",
			},
			{
				Name:        "exclusion",
				Keywords:    []string{"you can't sit", "not invited", "leave us"},
				Weight:      2,
				Explanation: "Exclusionary language",
			},
		},
		SafeToneMarkers: []string{
			"please", "thank you", "sorry", "let's work together", "can we", "may we",
		},
	}
}
