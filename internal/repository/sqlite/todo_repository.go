package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/faccoco/web-todo/internal/domain"
	"github.com/faccoco/web-todo/internal/repository"
)

const createTodosTable = `
CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	text TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	due_date TEXT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);
`

type TodoRepository struct {
	db *sql.DB
}

func NewTodoRepository(db *sql.DB) repository.TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTodosTable); err != nil {
		return fmt.Errorf("create todos table: %w", err)
	}
	return nil
}

func (r *TodoRepository) Create(ctx context.Context, todo *domain.Todo) (int64, error) {
	now := time.Now().UTC().Truncate(time.Second)
	todo.CreatedAt = now
	todo.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO todos (user_id, text, completed, created_at, updated_at, due_date)
VALUES (?, ?, ?, ?, ?, ?)`,
		todo.UserID,
		todo.Text,
		todo.Completed,
		todo.CreatedAt,
		todo.UpdatedAt,
		nullString(todo.DueDate),
	)
	if err != nil {
		return 0, fmt.Errorf("insert todo: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("todo last insert id: %w", err)
	}
	todo.ID = id
	return id, nil
}

// ListByUser returns the user's todos newest-created first. Creation
// timestamps have second precision, so the id breaks ties within the
// same second.
func (r *TodoRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Todo, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, text, completed, created_at, updated_at, due_date
FROM todos
WHERE user_id = ?
ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []domain.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}
	return todos, nil
}

func (r *TodoRepository) Get(ctx context.Context, id, userID int64) (*domain.Todo, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, text, completed, created_at, updated_at, due_date
FROM todos
WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	return scanTodo(row)
}

// Update overwrites text and completed for the row matching (id, userID)
// and refreshes updated_at, leaving created_at untouched. A row owned by
// another user is indistinguishable from a missing one.
func (r *TodoRepository) Update(ctx context.Context, id, userID int64, text string, completed bool) (*domain.Todo, error) {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx, `
UPDATE todos
SET text = ?, completed = ?, updated_at = ?
WHERE id = ? AND user_id = ?`,
		text,
		completed,
		now,
		id,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update todo rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("todo: %w", repository.ErrNotFound)
	}

	return r.Get(ctx, id, userID)
}

func (r *TodoRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM todos WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("delete todo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete todo rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanTodo(row interface {
	Scan(dest ...any) error
}) (*domain.Todo, error) {
	var (
		todo    domain.Todo
		dueDate sql.NullString
	)
	if err := row.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Text,
		&todo.Completed,
		&todo.CreatedAt,
		&todo.UpdatedAt,
		&dueDate,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("todo: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan todo: %w", err)
	}
	if dueDate.Valid {
		todo.DueDate = &dueDate.String
	}
	return &todo, nil
}

func nullString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
