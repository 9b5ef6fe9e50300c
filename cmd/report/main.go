// The report binary is the standalone analytics process. It opens its own
// read-only view of the task database and serves a single report page,
// parameterized by user id, independent of the web application.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jgomezbdk/fixmate/internal/analytics"
	"github.com/jgomezbdk/fixmate/internal/config"
	"github.com/jgomezbdk/fixmate/internal/store"
	"github.com/jgomezbdk/fixmate/internal/web"
)

type reportData struct {
	UserID  int64
	Summary analytics.Summary
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("templates: %v", err)
	}

	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	// The report runs on its own port; let the web app's pages link to it
	// from their origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		userID, err := strconv.ParseInt(req.URL.Query().Get("user"), 10, 64)
		if err != nil || userID <= 0 {
			renderer.Render(w, http.StatusOK, "report.html", web.PageData{
				Title: "Report",
				Data: reportData{
					Summary: analytics.ErrorSummary("Missing or invalid user parameter."),
				},
			})
			return
		}

		var summary analytics.Summary
		tasks, err := pgStore.ListAllTasks(req.Context(), userID)
		if err != nil {
			log.Printf("report user %d: %v", userID, err)
			summary = analytics.ErrorSummary("Error loading tasks for this user.")
		} else {
			summary = analytics.Summarize(tasks, time.Now().UTC())
		}

		renderer.Render(w, http.StatusOK, "report.html", web.PageData{
			Title: "Report",
			Data:  reportData{UserID: userID, Summary: summary},
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ReportPort,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("FixMate report listening on :%s", cfg.ReportPort)
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
