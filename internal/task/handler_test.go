package task

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgomezbdk/fixmate/internal/middleware"
	"github.com/jgomezbdk/fixmate/internal/models"
	"github.com/jgomezbdk/fixmate/internal/store"
	"github.com/jgomezbdk/fixmate/internal/web"
)

// fakeStore is an in-memory TaskStore/UserStore with the same ownership
// scoping as the SQL store.
type fakeStore struct {
	tasks  map[int64]models.Task
	nextID int64
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{tasks: make(map[int64]models.Task), nextID: 1}
}

func (f *fakeStore) ListTasks(_ context.Context, userID int64, completed bool) ([]models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Task
	for _, t := range f.tasks {
		if t.UserID == userID && t.Completed == completed {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *fakeStore) GetTask(_ context.Context, userID, id int64) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (f *fakeStore) AddTask(_ context.Context, userID int64, form models.TaskForm) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	t := models.Task{ID: f.nextID, UserID: userID}
	form.Apply(&t)
	f.tasks[t.ID] = t
	f.nextID++
	return &t, nil
}

func (f *fakeStore) UpdateTask(_ context.Context, userID, id int64, form models.TaskForm) error {
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return store.ErrNotFound
	}
	form.Apply(&t)
	f.tasks[id] = t
	return nil
}

func (f *fakeStore) SetCompletion(_ context.Context, userID, id int64, completed bool) error {
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return store.ErrNotFound
	}
	t.Completed = completed
	f.tasks[id] = t
	return nil
}

func (f *fakeStore) DeleteTask(_ context.Context, userID, id int64) error {
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return store.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	return &models.User{ID: id, Username: "demo"}, nil
}

func newTestHandler(t *testing.T, fs *fakeStore) *Handler {
	t.Helper()
	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	return NewHandler(fs, fs, renderer)
}

// doRequest routes the request through chi so URL params resolve.
func doRequest(h *Handler, userID int64, method, target string, form url.Values) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/dashboard", h.Dashboard)
	r.Route("/task", func(r chi.Router) {
		r.Get("/add", h.AddForm)
		r.Post("/add", h.Add)
		r.Get("/edit/{id}", h.EditForm)
		r.Post("/edit/{id}", h.Edit)
		r.Post("/complete/{id}", h.Complete)
		r.Post("/uncomplete/{id}", h.Uncomplete)
		r.Post("/delete/{id}", h.Delete)
		r.Get("/{id}", h.Detail)
	})

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req = req.WithContext(middleware.WithUserID(req.Context(), userID))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func taskForm(title string) url.Values {
	form := url.Values{}
	form.Set("title", title)
	form.Set("category", "Home")
	return form
}

func TestAddTaskPersistsPendingRow(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(t, fs)

	rec := doRequest(h, 1, http.MethodPost, "/task/add", taskForm("Clean gutters"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	require.Len(t, fs.tasks, 1)
	for _, task := range fs.tasks {
		assert.Equal(t, "Clean gutters", task.Title)
		assert.Equal(t, int64(1), task.UserID)
		assert.False(t, task.Completed)
	}
}

func TestAddTaskEmptyTitlePersistsNothing(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(t, fs)

	rec := doRequest(h, 1, http.MethodPost, "/task/add", taskForm("   "))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task title cannot be empty.")
	assert.Empty(t, fs.tasks)
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(t, fs)

	// Task owned by user 1; user 2 attacks it by id.
	_, err := fs.AddTask(context.Background(), 1, models.TaskForm{Title: "Owned by A"})
	require.NoError(t, err)

	attacks := []struct {
		name   string
		method string
		target string
		form   url.Values
	}{
		{name: "detail", method: http.MethodGet, target: "/task/1"},
		{name: "edit", method: http.MethodPost, target: "/task/edit/1", form: taskForm("hijacked")},
		{name: "complete", method: http.MethodPost, target: "/task/complete/1"},
		{name: "delete", method: http.MethodPost, target: "/task/delete/1"},
	}

	for _, tt := range attacks {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, 2, tt.method, tt.target, tt.form)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
		})
	}

	// No observable mutation.
	task := fs.tasks[1]
	assert.Equal(t, "Owned by A", task.Title)
	assert.False(t, task.Completed)
	assert.Len(t, fs.tasks, 1)
}

func TestCompletionRoundTrip(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(t, fs)

	_, err := fs.AddTask(context.Background(), 1, models.TaskForm{Title: "Flip me"})
	require.NoError(t, err)

	rec := doRequest(h, 1, http.MethodPost, "/task/complete/1", nil)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	assert.True(t, fs.tasks[1].Completed)

	rec = doRequest(h, 1, http.MethodPost, "/task/uncomplete/1", nil)
	assert.Equal(t, "/dashboard?view=completed", rec.Header().Get("Location"))
	assert.False(t, fs.tasks[1].Completed)
}

func TestPartitionsAreDisjointAndComplete(t *testing.T) {
	fs := newFakeStore()
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		_, err := fs.AddTask(ctx, 1, models.TaskForm{Title: title})
		require.NoError(t, err)
	}
	require.NoError(t, fs.SetCompletion(ctx, 1, 2, true))

	pending, err := fs.ListTasks(ctx, 1, false)
	require.NoError(t, err)
	completed, err := fs.ListTasks(ctx, 1, true)
	require.NoError(t, err)

	seen := make(map[int64]bool)
	for _, task := range append(pending, completed...) {
		assert.False(t, seen[task.ID], "task %d in both partitions", task.ID)
		seen[task.ID] = true
	}
	assert.Len(t, seen, 3)
}

func TestDashboardViewFallback(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(t, fs)

	_, err := fs.AddTask(context.Background(), 1, models.TaskForm{Title: "Visible pending task"})
	require.NoError(t, err)

	for _, target := range []string{"/dashboard", "/dashboard?view=bogus", "/dashboard?view=incomplete"} {
		rec := doRequest(h, 1, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Visible pending task", "target %s", target)
	}
}

func TestDashboardStorageErrorStillRenders(t *testing.T) {
	fs := newFakeStore()
	fs.err = assert.AnError
	h := newTestHandler(t, fs)

	rec := doRequest(h, 1, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error fetching tasks.")
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestEditUpdatesMutableFieldsOnly(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(t, fs)

	_, err := fs.AddTask(context.Background(), 1, models.TaskForm{Title: "Before", Category: "Home"})
	require.NoError(t, err)

	form := url.Values{}
	form.Set("title", "After")
	form.Set("category", "Garden")
	rec := doRequest(h, 1, http.MethodPost, "/task/edit/1", form)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	task := fs.tasks[1]
	assert.Equal(t, "After", task.Title)
	assert.Equal(t, "Garden", task.Category)
	assert.Equal(t, int64(1), task.UserID)
}

func TestDeleteTask(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(t, fs)

	_, err := fs.AddTask(context.Background(), 1, models.TaskForm{Title: "Doomed"})
	require.NoError(t, err)

	rec := doRequest(h, 1, http.MethodPost, "/task/delete/1", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, fs.tasks)

	// Deleting again reports not-found, not an error page.
	rec = doRequest(h, 1, http.MethodPost, "/task/delete/1", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}
