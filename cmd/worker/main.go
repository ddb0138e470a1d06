package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/digicitizen/detector/internal/cache"
	"github.com/digicitizen/detector/internal/classify"
	"github.com/digicitizen/detector/internal/config"
	"github.com/digicitizen/detector/internal/database"
	"github.com/digicitizen/detector/internal/embedding"
	"github.com/digicitizen/detector/internal/history"
	"github.com/digicitizen/detector/internal/queue"
	"github.com/digicitizen/detector/internal/queue/workers"
	"github.com/digicitizen/detector/internal/vectorstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// The worker exists to classify stored submissions, so the database
	// is required here.
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var classifyCache *cache.Cache
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err == nil {
		classifyCache = cache.New(rdb)
		defer rdb.Close()
	}

	gateway := classify.FromConfig(cfg.Inference)
	classifySvc := classify.NewService(gateway, classifyCache,
		time.Duration(cfg.Inference.CacheTTLSeconds)*time.Second)
	historySvc := history.NewService(db)

	var embedSvc *embedding.Service
	var vectors *vectorstore.Store
	if cfg.Embedding.OpenAIKey != "" {
		embedSvc = embedding.NewService(cfg.Embedding.OpenAIKey, cfg.Embedding.Model)
		vectors = vectorstore.NewStore(db)
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	classifyWorker := workers.NewClassifyWorker(classifySvc, historySvc, embedSvc, vectors)
	registry.Register(queue.TypeClassifySubmission, asynq.HandlerFunc(classifyWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 10, "backends", gateway.Backends())
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
