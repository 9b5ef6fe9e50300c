// The seed binary creates the demo user and a few sample tasks.
// It is idempotent: an existing demo user is left untouched.
package main

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jgomezbdk/fixmate/internal/auth"
	"github.com/jgomezbdk/fixmate/internal/config"
	"github.com/jgomezbdk/fixmate/internal/models"
	"github.com/jgomezbdk/fixmate/internal/store"
)

const (
	demoUsername = "demo"
	demoPassword = "demo123"
)

var sampleTasks = []models.TaskForm{
	{
		Title:         "Clean gutters",
		Category:      "Home",
		DueDate:       "2024-01-01",
		Frequency:     "yearly",
		Cost:          "50",
		EstimatedTime: "2 hours",
		Guide:         "Use a sturdy ladder. Scoop debris into a bucket and flush downspouts with a hose.",
	},
	{
		Title:         "Replace furnace filter",
		Category:      "Heating",
		Frequency:     "quarterly",
		Cost:          "25",
		EstimatedTime: "15 minutes",
	},
	{
		Title:     "Test smoke detectors",
		Category:  "Safety",
		Frequency: "monthly",
	},
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
	if err := pgStore.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	user, err := pgStore.CreateUser(ctx, demoUsername, hash)
	if errors.Is(err, store.ErrDuplicateUsername) {
		log.Printf("demo user %q already exists, nothing to do", demoUsername)
		return
	}
	if err != nil {
		log.Fatalf("create demo user: %v", err)
	}

	for _, f := range sampleTasks {
		if _, err := pgStore.AddTask(ctx, user.ID, f); err != nil {
			log.Fatalf("seed task %q: %v", f.Title, err)
		}
	}

	log.Printf("seeded demo user %q (id %d) with %d tasks", user.Username, user.ID, len(sampleTasks))
}
