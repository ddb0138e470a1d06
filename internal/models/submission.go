package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Submission is one analyzed piece of chat text. The rule-scorer fields
// are filled synchronously; the hosted-classification fields arrive later
// when the classify worker (or the classify endpoint) completes.
type Submission struct {
	ID     uuid.UUID `json:"id" db:"id"`
	Text   string    `json:"text" db:"text"`
	Source string    `json:"source" db:"source"` // api, batch, transcript

	// Rule scorer result.
	Label     string   `json:"label" db:"label"`
	RiskScore float64  `json:"risk_score_0_10" db:"risk_score"`
	Matches   []string `json:"matches" db:"matches"`
	Notes     string   `json:"notes" db:"notes"`

	// Hosted classification result, nil until classified.
	LabelScores json.RawMessage `json:"label_scores,omitempty" db:"label_scores"`
	Toxicity    *float64        `json:"toxicity,omitempty" db:"toxicity"`
	Scam        *float64        `json:"scam,omitempty" db:"scam"`
	Feedback    string          `json:"feedback,omitempty" db:"feedback"`

	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	ClassifiedAt *time.Time `json:"classified_at,omitempty" db:"classified_at"`
}
