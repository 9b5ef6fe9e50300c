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
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jgomezbdk/fixmate/internal/analytics"
	"github.com/jgomezbdk/fixmate/internal/auth"
	"github.com/jgomezbdk/fixmate/internal/config"
	"github.com/jgomezbdk/fixmate/internal/middleware"
	"github.com/jgomezbdk/fixmate/internal/store"
	"github.com/jgomezbdk/fixmate/internal/task"
	"github.com/jgomezbdk/fixmate/internal/web"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb)

	// ── Templates ────────────────────────────────────────────
	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("templates: %v", err)
	}

	// ── Handlers ─────────────────────────────────────────────
	authHandler := auth.NewHandler(pgStore, sessions, renderer)
	taskHandler := task.NewHandler(pgStore, pgStore, renderer)
	analyticsHandler := analytics.NewHandler(pgStore, pgStore, renderer)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Public routes
	r.Get("/", authHandler.Home)
	r.Get("/register", authHandler.RegisterForm)
	r.Post("/register", authHandler.Register)
	r.Get("/login", authHandler.LoginForm)
	r.Post("/login", authHandler.Login)

	// Session-protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(sessions))
		r.Get("/logout", authHandler.Logout)
		r.Get("/dashboard", taskHandler.Dashboard)
		r.Get("/analytics", analyticsHandler.Show)

		r.Route("/task", func(r chi.Router) {
			r.Get("/add", taskHandler.AddForm)
			r.Post("/add", taskHandler.Add)
			r.Get("/edit/{id}", taskHandler.EditForm)
			r.Post("/edit/{id}", taskHandler.Edit)
			r.Post("/complete/{id}", taskHandler.Complete)
			r.Post("/uncomplete/{id}", taskHandler.Uncomplete)
			r.Post("/delete/{id}", taskHandler.Delete)
			r.Get("/{id}", taskHandler.Detail)
		})
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("FixMate listening on :%s", cfg.Port)
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
