package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eshitag/Dev-connector/internal/auth"
	"github.com/eshitag/Dev-connector/internal/config"
	"github.com/eshitag/Dev-connector/internal/middleware"
	"github.com/eshitag/Dev-connector/internal/post"
	"github.com/eshitag/Dev-connector/internal/profile"
	"github.com/eshitag/Dev-connector/internal/store"
	"github.com/eshitag/Dev-connector/internal/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pgPool.Close()
	users := store.NewPostgresStore(pgPool)
	if err := users.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	mongoDB := mongoClient.Database(cfg.MongoDB)
	posts := store.NewMongoStore(mongoDB)
	if err := posts.EnsureIndexes(ctx); err != nil {
		log.Fatalf("mongo indexes: %v", err)
	}
	profiles := store.NewProfileStore(mongoDB)
	if err := profiles.EnsureIndexes(ctx); err != nil {
		log.Fatalf("mongo indexes: %v", err)
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	defer rdb.Close()
	tokens := auth.NewTokens(cfg.JWTSecret, time.Duration(cfg.TokenTTL), store.NewRevocationStore(rdb))

	// ── MinIO ────────────────────────────────────────────────
	avatars, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, "avatars", cfg.MinioUseSSL,
	)
	if err != nil {
		log.Fatalf("minio connect: %v", err)
	}

	// ── Handlers ─────────────────────────────────────────────
	clock := util.NewRealClock()
	authHandler := auth.NewHandler(auth.NewRegistrar(users, clock), users, tokens)
	postHandler := post.NewHandler(post.NewService(posts, users, clock))
	profileHandler := profile.NewHandler(profile.NewService(profiles, users, avatars, clock))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, tokens, authHandler, postHandler, profileHandler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("Backend listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}

func newRouter(
	cfg *config.Config,
	tokens middleware.TokenVerifier,
	authHandler *auth.Handler,
	postHandler *post.Handler,
	profileHandler *profile.Handler,
) http.Handler {
	requireAuth := middleware.RequireAuth(tokens)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "x-auth-token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Registration (public)
	r.Post("/api/users", authHandler.Register)

	// Login is public, the rest needs a token
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/", authHandler.Login)
		r.With(requireAuth).Get("/", authHandler.Me)
		r.With(requireAuth).Post("/logout", authHandler.Logout)
	})

	r.Route("/api/profile", func(r chi.Router) {
		profileHandler.Routes(r, requireAuth)
	})

	// Post routes (protected)
	r.Route("/api/post", func(r chi.Router) {
		r.Use(requireAuth)
		postHandler.Routes(r)
	})

	return r
}
