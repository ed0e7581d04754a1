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

	"github.com/arjun/estate-market/backend/internal/auth"
	"github.com/arjun/estate-market/backend/internal/config"
	"github.com/arjun/estate-market/backend/internal/listing"
	"github.com/arjun/estate-market/backend/internal/middleware"
	"github.com/arjun/estate-market/backend/internal/store"
	"github.com/arjun/estate-market/backend/internal/token"
	"github.com/arjun/estate-market/backend/internal/user"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// ── PostgreSQL (users) ───────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pgPool.Close()
	userStore := store.NewPostgresStore(pgPool)
	if err := userStore.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	// ── MongoDB (listings) ───────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	listingStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
	if err := listingStore.EnsureIndexes(ctx); err != nil {
		log.Fatalf("mongo indexes: %v", err)
	}

	// ── Token service ────────────────────────────────────────
	tokens := token.NewService(cfg.JWTSecret)
	requireSession := middleware.RequireSession(tokens)

	// ── Handlers ─────────────────────────────────────────────
	authHandler := auth.NewHandler(userStore, tokens)
	userHandler := user.NewHandler(userStore, listingStore)
	listingHandler := listing.NewHandler(listingStore)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/sign-up", authHandler.SignUp)
		r.Post("/sign-in", authHandler.SignIn)
		r.Post("/google", authHandler.Google)
		r.Post("/sign-out", authHandler.SignOut)
	})

	r.Route("/api/v1/user", func(r chi.Router) {
		r.Get("/{id}", userHandler.Get)
		r.With(requireSession).Post("/update/{id}", userHandler.Update)
		r.With(requireSession).Delete("/delete/{id}", userHandler.Delete)
		r.With(requireSession).Get("/listings/{id}", userHandler.Listings)
	})

	r.Route("/api/v1/listing", func(r chi.Router) {
		r.Get("/get", listingHandler.Search)
		r.Get("/get/{id}", listingHandler.Get)
		r.With(requireSession).Post("/create", listingHandler.Create)
		r.With(requireSession).Post("/update/{id}", listingHandler.Update)
		r.With(requireSession).Post("/delete/{id}", listingHandler.Delete)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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
