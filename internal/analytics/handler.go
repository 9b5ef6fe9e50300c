package analytics

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jgomezbdk/fixmate/internal/middleware"
	"github.com/jgomezbdk/fixmate/internal/models"
	"github.com/jgomezbdk/fixmate/internal/web"
)

// TaskStore is the read-only slice of persistence the report needs.
type TaskStore interface {
	ListAllTasks(ctx context.Context, userID int64) ([]models.Task, error)
}

// UserStore is the slice of user persistence the page chrome needs.
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Handler serves the in-app analytics page.
type Handler struct {
	tasks  TaskStore
	users  UserStore
	render *web.Renderer
}

func NewHandler(tasks TaskStore, users UserStore, render *web.Renderer) *Handler {
	return &Handler{tasks: tasks, users: users, render: render}
}

// Show renders the analytics page for the current user. A load failure
// renders an empty summary with an inline error; it never propagates.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var summary Summary
	tasks, err := h.tasks.ListAllTasks(r.Context(), userID)
	if err != nil {
		log.Printf("analytics: %v", err)
		summary = ErrorSummary("Error fetching analytics data.")
	} else {
		summary = Summarize(tasks, time.Now().UTC())
	}

	username := ""
	if u, err := h.users.GetUserByID(r.Context(), userID); err == nil && u != nil {
		username = u.Username
	}

	h.render.Render(w, http.StatusOK, "analytics.html", web.PageData{
		Title:    "Analytics",
		Username: username,
		Flashes:  web.PopFlashes(w, r),
		Data:     summary,
	})
}
