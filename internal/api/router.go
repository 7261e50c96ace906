// Package api wires the HTTP surface. All routes live under /api; auth,
// payment and health endpoints are public, everything else requires a
// bearer session token.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/brainsait/docuscan/internal/ai"
	"github.com/brainsait/docuscan/internal/api/handlers"
	"github.com/brainsait/docuscan/internal/api/middleware"
	"github.com/brainsait/docuscan/internal/auth"
	"github.com/brainsait/docuscan/internal/billing"
	"github.com/brainsait/docuscan/internal/cache"
	"github.com/brainsait/docuscan/internal/config"
	"github.com/brainsait/docuscan/internal/ocr"
	"github.com/brainsait/docuscan/internal/rag"
	"github.com/brainsait/docuscan/internal/repository/postgres"
	"github.com/brainsait/docuscan/internal/storage"
	"github.com/brainsait/docuscan/internal/user"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{mux: chi.NewRouter(), db: db, redis: rdb, cfg: cfg}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Repositories
	users := postgres.NewUserRepo(rt.db)
	history := postgres.NewHistoryRepo(rt.db)
	payments := postgres.NewPaymentRepo(rt.db)
	invoices := postgres.NewInvoiceRepo(rt.db)
	apiKeys := postgres.NewAPIKeyRepo(rt.db)
	ragRepo := postgres.NewRAGRepo(rt.db)

	// Shared infrastructure
	redisCache := cache.NewCache(rt.redis)
	denylist := auth.NewRedisDenylist(redisCache)
	resultCache := ocr.NewRedisResultCache(redisCache)
	gateway := ai.NewGateway(rt.cfg.AI)
	blobs := storage.NewSupabaseStorage(rt.cfg.Storage)
	payGateway := billing.NewStripeGateway(rt.cfg.Stripe)

	// Services
	authSvc := auth.NewService(users, denylist, rt.cfg.Auth.JWTSecret)
	var blobStore ocr.BlobStore
	if blobs != nil {
		blobStore = blobs
	}
	ocrSvc := ocr.NewService(users, history, resultCache, gateway, blobStore, rt.cfg.AI.VisionModel)
	ragSvc := rag.NewService(ragRepo, gateway, rt.cfg.AI.ChatModel)
	billingSvc := billing.NewService(users, payments, invoices, payGateway)
	userSvc := user.NewService(users, history, payments, invoices, apiKeys)

	// Handlers
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	authH := handlers.NewAuthHandler(authSvc)
	ocrH := handlers.NewOCRHandler(ocrSvc)
	ragH := handlers.NewRAGHandler(ragSvc)
	payH := handlers.NewPaymentHandler(billingSvc)
	userH := handlers.NewUserHandler(userSvc)

	requireAuth := auth.Middleware(authSvc, users, handlers.WriteError)

	r.Get("/health", health.Healthz)
	r.Get("/readyz", health.Readyz)

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Get("/health", health.Healthz)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)
			r.Post("/logout", authH.Logout)
			r.Post("/forgot-password", authH.ForgotPassword)
			r.Post("/reset-password", authH.ResetPassword)
		})
		r.Get("/payment/pricing", payH.Pricing)
		r.Post("/payment/callback", payH.Callback)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/payment/create-session", payH.CreateSession)
			r.Get("/payment/history", payH.History)

			r.Route("/ocr", func(r chi.Router) {
				r.Post("/process", ocrH.Process)
				r.Post("/batch", ocrH.Batch)
				r.Get("/history", ocrH.History)
				r.Get("/result/{id}", ocrH.Result)
			})

			r.Route("/rag", func(r chi.Router) {
				r.Post("/documents", ragH.IndexDocument)
				r.Get("/documents", ragH.ListDocuments)
				r.Delete("/documents/{id}", ragH.DeleteDocument)
				r.Post("/query", ragH.Query)
				r.Get("/conversations", ragH.ListConversations)
				r.Get("/conversations/{id}", ragH.GetConversation)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", userH.Profile)
				r.Put("/profile", userH.UpdateProfile)
				r.Get("/api-keys", userH.ListAPIKeys)
				r.Post("/api-keys", userH.CreateAPIKey)
				r.Delete("/api-keys/{id}", userH.DeleteAPIKey)
				r.Get("/usage", userH.Usage)
				r.Get("/billing", userH.Billing)
				r.Get("/invoices/{id}", userH.Invoice)
			})
		})
	})

	return r
}
