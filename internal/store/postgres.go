package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jgomezbdk/fixmate/internal/models"
)

var (
	// ErrNotFound covers both a missing row and a row owned by someone
	// else, so existence never leaks to non-owners.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUsername maps the users.username unique constraint.
	ErrDuplicateUsername = errors.New("username already taken")
)

// PostgresStore handles user and task persistence against PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables and indexes if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL PRIMARY KEY,
			username      TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS tasks (
			id             BIGSERIAL PRIMARY KEY,
			user_id        BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			title          TEXT NOT NULL,
			category       TEXT NOT NULL DEFAULT '',
			due_date       TEXT NOT NULL DEFAULT '',
			frequency      TEXT NOT NULL DEFAULT '',
			cost           TEXT NOT NULL DEFAULT '',
			estimated_time TEXT NOT NULL DEFAULT '',
			guide          TEXT NOT NULL DEFAULT '',
			video_url      TEXT NOT NULL DEFAULT '',
			completed      BOOLEAN NOT NULL DEFAULT FALSE,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks (user_id);
		CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks (user_id, completed);
	`)
	return err
}

func (s *PostgresStore) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, username, created_at`,
		username, passwordHash,
	).Scan(&u.ID, &u.Username, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

const taskColumns = `id, user_id, title, category, due_date, frequency,
	cost, estimated_time, guide, video_url, completed, created_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Category, &t.DueDate,
		&t.Frequency, &t.Cost, &t.EstimatedTime, &t.Guide, &t.VideoURL,
		&t.Completed, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasks returns the user's tasks in one completion partition. Pending
// tasks sort by due date then title; completed tasks sort by title.
func (s *PostgresStore) ListTasks(ctx context.Context, userID int64, completed bool) ([]models.Task, error) {
	order := `due_date ASC, title ASC`
	if completed {
		order = `title ASC`
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE user_id = $1 AND completed = $2 ORDER BY `+order,
		userID, completed,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ListAllTasks returns every task of a user regardless of completion,
// in creation order. Used by the analytics engine.
func (s *PostgresStore) ListAllTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list all tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list all tasks: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *PostgresStore) GetTask(ctx context.Context, userID, id int64) (*models.Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) AddTask(ctx context.Context, userID int64, f models.TaskForm) (*models.Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx,
		`INSERT INTO tasks
		   (user_id, title, category, due_date, frequency, cost,
		    estimated_time, guide, video_url, completed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
		 RETURNING `+taskColumns,
		userID, f.Title, f.Category, f.DueDate, f.Frequency, f.Cost,
		f.EstimatedTime, f.Guide, f.VideoURL,
	))
	if err != nil {
		return nil, fmt.Errorf("add task: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) UpdateTask(ctx context.Context, userID, id int64, f models.TaskForm) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET
		   title = $1, category = $2, due_date = $3, frequency = $4,
		   cost = $5, estimated_time = $6, guide = $7, video_url = $8
		 WHERE id = $9 AND user_id = $10`,
		f.Title, f.Category, f.DueDate, f.Frequency, f.Cost,
		f.EstimatedTime, f.Guide, f.VideoURL, id, userID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCompletion flips the completion flag. Zero rows affected means the
// task doesn't exist or belongs to another user.
func (s *PostgresStore) SetCompletion(ctx context.Context, userID, id int64, completed bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET completed = $1 WHERE id = $2 AND user_id = $3`,
		completed, id, userID,
	)
	if err != nil {
		return fmt.Errorf("set completion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteTask(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
