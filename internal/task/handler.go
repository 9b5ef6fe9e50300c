package task

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jgomezbdk/fixmate/internal/middleware"
	"github.com/jgomezbdk/fixmate/internal/models"
	"github.com/jgomezbdk/fixmate/internal/store"
	"github.com/jgomezbdk/fixmate/internal/web"
)

// TaskStore defines the interface for task persistence. Every mutating
// operation is scoped to the owning user.
type TaskStore interface {
	ListTasks(ctx context.Context, userID int64, completed bool) ([]models.Task, error)
	GetTask(ctx context.Context, userID, id int64) (*models.Task, error)
	AddTask(ctx context.Context, userID int64, f models.TaskForm) (*models.Task, error)
	UpdateTask(ctx context.Context, userID, id int64, f models.TaskForm) error
	SetCompletion(ctx context.Context, userID, id int64, completed bool) error
	DeleteTask(ctx context.Context, userID, id int64) error
}

// UserStore is the slice of user persistence the page chrome needs.
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Handler holds task HTTP handlers.
type Handler struct {
	tasks  TaskStore
	users  UserStore
	render *web.Renderer
}

func NewHandler(tasks TaskStore, users UserStore, render *web.Renderer) *Handler {
	return &Handler{tasks: tasks, users: users, render: render}
}

type dashboardData struct {
	Pending   []models.Task
	Completed []models.Task
	View      string
}

type taskFormData struct {
	Form    models.TaskForm
	Action  string
	Editing bool
}

type taskDetailData struct {
	Task models.Task
}

// Dashboard shows the user's tasks partitioned into pending and completed.
// An unrecognized view parameter falls back to pending.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	view := r.URL.Query().Get("view")
	if view != "completed" {
		view = "pending"
	}

	data := dashboardData{View: view}
	flashes := web.PopFlashes(w, r)

	pending, err := h.tasks.ListTasks(r.Context(), userID, false)
	if err == nil {
		data.Pending = pending
		data.Completed, err = h.tasks.ListTasks(r.Context(), userID, true)
	}
	if err != nil {
		log.Printf("dashboard: %v", err)
		flashes = append(flashes, web.Flash{Category: "danger", Message: "Error fetching tasks."})
		data = dashboardData{View: view}
	}

	h.render.Render(w, http.StatusOK, "dashboard.html", web.PageData{
		Title:    "Dashboard",
		Username: h.username(r),
		Flashes:  flashes,
		Data:     data,
	})
}

// Detail shows a single task.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id, ok := taskID(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	t, err := h.tasks.GetTask(r.Context(), userID, id)
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		log.Printf("task detail: %v", err)
		web.SetFlash(w, "danger", "Error fetching task details.")
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	h.render.Render(w, http.StatusOK, "task_detail.html", web.PageData{
		Title:    t.Title,
		Username: h.username(r),
		Flashes:  web.PopFlashes(w, r),
		Data:     taskDetailData{Task: *t},
	})
}

// AddForm shows the empty task form.
func (h *Handler) AddForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, taskFormData{Action: "/task/add"}, nil)
}

// Add creates a new task for the current user.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderForm(w, r, taskFormData{Action: "/task/add"},
			&web.Flash{Category: "danger", Message: "Invalid form submission."})
		return
	}
	form := models.ParseTaskForm(r.PostForm)
	data := taskFormData{Form: form, Action: "/task/add"}

	if err := form.Validate(); err != nil {
		h.renderForm(w, r, data, &web.Flash{Category: "danger", Message: err.Error()})
		return
	}

	if _, err := h.tasks.AddTask(r.Context(), userID, form); err != nil {
		log.Printf("add task: %v", err)
		h.renderForm(w, r, data, &web.Flash{Category: "danger", Message: "Error adding task."})
		return
	}

	web.SetFlash(w, "success", "Task added successfully!")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// EditForm shows the form pre-filled with the task's current fields.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id, ok := taskID(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	t, err := h.tasks.GetTask(r.Context(), userID, id)
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		log.Printf("edit task fetch: %v", err)
		web.SetFlash(w, "danger", "Error fetching task for edit.")
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	form := models.TaskForm{
		Title:         t.Title,
		Category:      t.Category,
		DueDate:       t.DueDate,
		Frequency:     t.Frequency,
		Cost:          t.Cost,
		EstimatedTime: t.EstimatedTime,
		Guide:         t.Guide,
		VideoURL:      t.VideoURL,
	}
	h.renderForm(w, r, taskFormData{Form: form, Action: editAction(id), Editing: true}, nil)
}

// Edit overwrites the mutable fields of a task. Ownership never changes.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id, ok := taskID(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderForm(w, r, taskFormData{Action: editAction(id), Editing: true},
			&web.Flash{Category: "danger", Message: "Invalid form submission."})
		return
	}
	form := models.ParseTaskForm(r.PostForm)
	data := taskFormData{Form: form, Action: editAction(id), Editing: true}

	if err := form.Validate(); err != nil {
		h.renderForm(w, r, data, &web.Flash{Category: "danger", Message: err.Error()})
		return
	}

	err := h.tasks.UpdateTask(r.Context(), userID, id, form)
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		log.Printf("update task: %v", err)
		h.renderForm(w, r, data, &web.Flash{Category: "danger", Message: "Error updating task."})
		return
	}

	web.SetFlash(w, "success", "Task updated successfully!")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Complete marks a task as done.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.setCompletion(w, r, true, "Task marked as complete.", "/dashboard")
}

// Uncomplete returns a task to the pending partition.
func (h *Handler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	h.setCompletion(w, r, false, "Task marked as incomplete.", "/dashboard?view=completed")
}

func (h *Handler) setCompletion(w http.ResponseWriter, r *http.Request, completed bool, okMsg, redirect string) {
	userID := middleware.UserID(r.Context())
	id, ok := taskID(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	err := h.tasks.SetCompletion(r.Context(), userID, id, completed)
	switch {
	case errors.Is(err, store.ErrNotFound):
		web.SetFlash(w, "warning", "Task not found or access denied.")
	case err != nil:
		log.Printf("set completion: %v", err)
		web.SetFlash(w, "danger", "Error updating task.")
	case completed:
		web.SetFlash(w, "success", okMsg)
	default:
		web.SetFlash(w, "info", okMsg)
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// Delete removes a task.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id, ok := taskID(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	err := h.tasks.DeleteTask(r.Context(), userID, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		web.SetFlash(w, "warning", "Task not found or access denied.")
	case err != nil:
		log.Printf("delete task: %v", err)
		web.SetFlash(w, "danger", "Error deleting task.")
	default:
		web.SetFlash(w, "info", "Task deleted.")
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func taskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func editAction(id int64) string {
	return "/task/edit/" + strconv.FormatInt(id, 10)
}

// notFound hides the difference between a missing task and someone else's.
func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	web.SetFlash(w, "warning", "Task not found or access denied.")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, data taskFormData, flash *web.Flash) {
	title := "Add Task"
	if data.Editing {
		title = "Edit Task"
	}
	flashes := web.PopFlashes(w, r)
	if flash != nil {
		flashes = append(flashes, *flash)
	}
	h.render.Render(w, http.StatusOK, "task_form.html", web.PageData{
		Title:    title,
		Username: h.username(r),
		Flashes:  flashes,
		Data:     data,
	})
}

func (h *Handler) username(r *http.Request) string {
	u, err := h.users.GetUserByID(r.Context(), middleware.UserID(r.Context()))
	if err != nil || u == nil {
		return ""
	}
	return u.Username
}
