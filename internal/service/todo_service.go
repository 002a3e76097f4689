package service

import (
	"context"

	"github.com/faccoco/web-todo/internal/domain"
	"github.com/faccoco/web-todo/internal/repository"
)

// TodoService coordinates todo operations for a single authenticated
// user. All methods are scoped by userID; items owned by other users
// behave as if they do not exist.
type TodoService interface {
	List(ctx context.Context, userID int64) ([]domain.Todo, error)
	Get(ctx context.Context, id, userID int64) (*domain.Todo, error)
	Create(ctx context.Context, userID int64, text string, dueDate *string) (*domain.Todo, error)
	Update(ctx context.Context, id, userID int64, text string, completed bool) (*domain.Todo, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
}

type todoService struct {
	todos repository.TodoRepository
}

func NewTodoService(todos repository.TodoRepository) TodoService {
	return &todoService{todos: todos}
}

func (s *todoService) List(ctx context.Context, userID int64) ([]domain.Todo, error) {
	return s.todos.ListByUser(ctx, userID)
}

func (s *todoService) Get(ctx context.Context, id, userID int64) (*domain.Todo, error) {
	return s.todos.Get(ctx, id, userID)
}

func (s *todoService) Create(ctx context.Context, userID int64, text string, dueDate *string) (*domain.Todo, error) {
	if text == "" {
		return nil, validationError("text is required")
	}

	todo := &domain.Todo{
		UserID:  userID,
		Text:    text,
		DueDate: dueDate,
	}
	if _, err := s.todos.Create(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *todoService) Update(ctx context.Context, id, userID int64, text string, completed bool) (*domain.Todo, error) {
	return s.todos.Update(ctx, id, userID, text, completed)
}

func (s *todoService) Delete(ctx context.Context, id, userID int64) (bool, error) {
	return s.todos.Delete(ctx, id, userID)
}
