// Package history persists analyzed submissions so past results can be
// listed, inspected, and compared.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digicitizen/detector/internal/classify"
	"github.com/digicitizen/detector/internal/models"
	"github.com/digicitizen/detector/internal/rules"
)

var ErrNotFound = errors.New("submission not found")

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// Create stores a freshly rule-scored submission and returns it with its id.
func (s *Service) Create(ctx context.Context, source string, res rules.AnalysisResult) (*models.Submission, error) {
	sub := &models.Submission{
		ID:        uuid.New(),
		Text:      res.Text,
		Source:    source,
		Label:     res.Label,
		RiskScore: res.RiskScore,
		Matches:   res.Matches,
		Notes:     res.Notes,
	}

	matches, err := json.Marshal(sub.Matches)
	if err != nil {
		return nil, fmt.Errorf("marshal matches: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`INSERT INTO submissions (id, text, source, label, risk_score, matches, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		sub.ID, sub.Text, sub.Source, sub.Label, sub.RiskScore, matches, sub.Notes,
	).Scan(&sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}

	return sub, nil
}

// SetClassification records the hosted-model result on an existing submission.
func (s *Service) SetClassification(ctx context.Context, id uuid.UUID, c *classify.Classification) error {
	labelScores, err := json.Marshal(c.Labels)
	if err != nil {
		return fmt.Errorf("marshal label scores: %w", err)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE submissions
		 SET label_scores = $2, toxicity = $3, scam = $4, feedback = $5, classified_at = now()
		 WHERE id = $1`,
		id, labelScores, c.Toxicity, c.Scam, c.Feedback,
	)
	if err != nil {
		return fmt.Errorf("update classification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, text, source, label, risk_score, matches, notes,
		        label_scores, toxicity, scam, feedback, created_at, classified_at
		 FROM submissions WHERE id = $1`, id)

	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Submission, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, text, source, label, risk_score, matches, notes,
		        label_scores, toxicity, scam, feedback, created_at, classified_at
		 FROM submissions ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM submissions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	var sub models.Submission
	var matches []byte
	var feedback *string

	err := row.Scan(&sub.ID, &sub.Text, &sub.Source, &sub.Label, &sub.RiskScore,
		&matches, &sub.Notes, &sub.LabelScores, &sub.Toxicity, &sub.Scam,
		&feedback, &sub.CreatedAt, &sub.ClassifiedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(matches, &sub.Matches); err != nil {
		return nil, fmt.Errorf("unmarshal matches: %w", err)
	}
	if feedback != nil {
		sub.Feedback = *feedback
	}
	return &sub, nil
}
