package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgomezbdk/fixmate/internal/middleware"
	"github.com/jgomezbdk/fixmate/internal/models"
	"github.com/jgomezbdk/fixmate/internal/web"
)

type fakeTasks struct {
	tasks []models.Task
	err   error
}

func (f *fakeTasks) ListAllTasks(_ context.Context, _ int64) ([]models.Task, error) {
	return f.tasks, f.err
}

func (f *fakeTasks) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	return &models.User{ID: id, Username: "demo"}, nil
}

func show(t *testing.T, fs *fakeTasks) *httptest.ResponseRecorder {
	t.Helper()
	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	h := NewHandler(fs, fs, renderer)

	req := httptest.NewRequest(http.MethodGet, "/analytics", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), 1))
	rec := httptest.NewRecorder()
	h.Show(rec, req)
	return rec
}

func TestShowRendersSummary(t *testing.T) {
	rec := show(t, &fakeTasks{tasks: []models.Task{
		{Title: "Clean gutters", Category: "Home", DueDate: "2024-01-01", Cost: "50"},
	}})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Clean gutters")
	assert.Contains(t, body, "50.00")
	assert.Contains(t, body, "Overdue")
}

func TestShowLoadErrorRendersInlineMessage(t *testing.T) {
	rec := show(t, &fakeTasks{err: assert.AnError})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Error fetching analytics data.")
	assert.NotContains(t, body, assert.AnError.Error())
}
