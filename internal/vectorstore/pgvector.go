// Package vectorstore keeps one embedding per classified submission in
// pgvector and answers nearest-neighbor queries over them.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// SimilarSubmission is one nearest-neighbor result.
type SimilarSubmission struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	Text         string    `json:"text"`
	Label        string    `json:"label"`
	RiskScore    float64   `json:"risk_score_0_10"`
	Score        float64   `json:"similarity"`
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Upsert stores or replaces the embedding for a submission.
func (s *Store) Upsert(ctx context.Context, submissionID uuid.UUID, embedding []float32) error {
	vec := pgvector.NewVector(embedding)

	_, err := s.db.Exec(ctx,
		`INSERT INTO submission_embeddings (submission_id, embedding)
		 VALUES ($1, $2)
		 ON CONFLICT (submission_id) DO UPDATE SET embedding = $2`,
		submissionID, vec,
	)
	if err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}
	return nil
}

// Similar returns the topK past submissions closest to the given one by
// cosine similarity, excluding the submission itself.
func (s *Store) Similar(ctx context.Context, submissionID uuid.UUID, topK int) ([]SimilarSubmission, error) {
	if topK <= 0 {
		topK = 5
	}

	rows, err := s.db.Query(ctx,
		`SELECT sub.id, sub.text, sub.label, sub.risk_score,
		        1 - (e.embedding <=> q.embedding) AS similarity
		 FROM submission_embeddings q
		 JOIN submission_embeddings e ON e.submission_id != q.submission_id
		 JOIN submissions sub ON sub.id = e.submission_id
		 WHERE q.submission_id = $1
		 ORDER BY e.embedding <=> q.embedding
		 LIMIT $2`,
		submissionID, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []SimilarSubmission
	for rows.Next() {
		var r SimilarSubmission
		if err := rows.Scan(&r.SubmissionID, &r.Text, &r.Label, &r.RiskScore, &r.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *Store) Delete(ctx context.Context, submissionID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM submission_embeddings WHERE submission_id = $1", submissionID)
	return err
}
