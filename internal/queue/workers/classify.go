package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/digicitizen/detector/internal/classify"
	"github.com/digicitizen/detector/internal/embedding"
	"github.com/digicitizen/detector/internal/history"
	"github.com/digicitizen/detector/internal/queue"
	"github.com/digicitizen/detector/internal/vectorstore"
)

// ClassifyWorker runs hosted classification for stored submissions and
// indexes their embeddings for the similar-submissions lookup.
type ClassifyWorker struct {
	classifier *classify.Service
	historySvc *history.Service
	embedSvc   *embedding.Service
	vectors    *vectorstore.Store
}

func NewClassifyWorker(classifier *classify.Service, hs *history.Service, es *embedding.Service, vs *vectorstore.Store) *ClassifyWorker {
	return &ClassifyWorker{
		classifier: classifier,
		historySvc: hs,
		embedSvc:   es,
		vectors:    vs,
	}
}

func (w *ClassifyWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.ClassifySubmissionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	id, err := uuid.Parse(payload.SubmissionID)
	if err != nil {
		return fmt.Errorf("parse submission ID: %w", err)
	}

	sub, err := w.historySvc.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load submission: %w", err)
	}

	slog.Info("classifying submission", "submission_id", id)

	result, err := w.classifier.Classify(ctx, sub.Text)
	if err != nil {
		return fmt.Errorf("classify submission %s: %w", id, err)
	}

	if err := w.historySvc.SetClassification(ctx, id, result); err != nil {
		return fmt.Errorf("store classification: %w", err)
	}

	// Embedding failures are not worth re-running the whole task over;
	// the similar-submissions lookup just skips this entry.
	if w.embedSvc != nil && w.vectors != nil {
		vec, err := w.embedSvc.EmbedSingle(ctx, sub.Text)
		if err != nil {
			slog.Warn("embedding failed", "submission_id", id, "error", err)
			return nil
		}
		if err := w.vectors.Upsert(ctx, id, vec); err != nil {
			slog.Warn("embedding upsert failed", "submission_id", id, "error", err)
		}
	}

	slog.Info("submission classified", "submission_id", id, "toxicity", result.Toxicity)
	return nil
}
