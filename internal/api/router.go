package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/digicitizen/detector/internal/api/handlers"
	"github.com/digicitizen/detector/internal/api/middleware"
	"github.com/digicitizen/detector/internal/auth"
	"github.com/digicitizen/detector/internal/cache"
	"github.com/digicitizen/detector/internal/classify"
	"github.com/digicitizen/detector/internal/config"
	"github.com/digicitizen/detector/internal/history"
	"github.com/digicitizen/detector/internal/queue"
	"github.com/digicitizen/detector/internal/rules"
	"github.com/digicitizen/detector/internal/vectorstore"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	jwt   *auth.JWTMiddleware
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		jwt:   auth.NewJWTMiddleware(cfg.Auth.JWTSecret),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services. Database and redis are optional: without them
	// analysis still runs, only persistence, caching, and async
	// classification are disabled.
	analyzer := rules.NewAnalyzer(rules.DefaultRuleSet())

	var classifyCache *cache.Cache
	var queueClient *queue.Client
	if rt.redis != nil {
		classifyCache = cache.New(rt.redis)
		queueClient = queue.NewClient(rt.cfg.Redis)
	}

	gateway := classify.FromConfig(rt.cfg.Inference)
	classifySvc := classify.NewService(gateway, classifyCache,
		time.Duration(rt.cfg.Inference.CacheTTLSeconds)*time.Second)

	var historySvc *history.Service
	var vectors *vectorstore.Store
	if rt.db != nil {
		historySvc = history.NewService(rt.db)
		vectors = vectorstore.NewStore(rt.db)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		analyzeH := handlers.NewAnalyzeHandler(analyzer, historySvc, queueClient)
		r.Route("/analyze", func(r chi.Router) {
			r.Post("/", analyzeH.Analyze)
			r.Post("/batch", analyzeH.Batch)
			r.Post("/transcript", analyzeH.Transcript)
		})
		r.Get("/presets", analyzeH.Presets)

		classifyH := handlers.NewClassifyHandler(classifySvc, analyzer, historySvc)
		r.Post("/classify", classifyH.Classify)

		historyH := handlers.NewHistoryHandler(historySvc, vectors)
		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyH.List)
			r.Get("/{id}", historyH.Get)
			r.Delete("/{id}", historyH.Delete)
			r.Get("/{id}/similar", historyH.Similar)
		})
	})

	return r
}
