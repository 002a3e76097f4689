package repository

import (
	"context"

	"github.com/faccoco/web-todo/internal/domain"
)

// TodoRepository exposes persistence operations for Todo items. Every
// method that addresses a single item takes the owner's userID and must
// only match rows belonging to that user.
type TodoRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, todo *domain.Todo) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Todo, error)
	Get(ctx context.Context, id, userID int64) (*domain.Todo, error)
	Update(ctx context.Context, id, userID int64, text string, completed bool) (*domain.Todo, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
}
