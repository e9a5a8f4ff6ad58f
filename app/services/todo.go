package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dchoi22/todoapp/app/dto"
	appErrors "github.com/dchoi22/todoapp/app/errors"
	"github.com/dchoi22/todoapp/app/models"
	"github.com/dchoi22/todoapp/app/store"
)

// TodoService enforces owner scoping on every todo operation. The owner id
// always comes from the authenticated identity, never from the request body,
// and a record that exists under another owner is indistinguishable from a
// record that does not exist.
type TodoService struct {
	store store.Storage
}

func NewTodoService(store store.Storage) *TodoService {
	return &TodoService{store: store}
}

func (s *TodoService) ListForOwner(ctx context.Context, ownerID int64) ([]models.Todo, *appErrors.AppError) {
	todos, err := s.store.Todos.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.NewInternal("error listing todos")
	}
	return todos, nil
}

func (s *TodoService) Get(ctx context.Context, ownerID, todoID int64) (*models.Todo, *appErrors.AppError) {
	todo, err := s.store.Todos.GetByIDAndOwner(ctx, todoID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("todo")
		}
		return nil, appErrors.NewInternal("error getting todo")
	}
	return todo, nil
}

func (s *TodoService) Create(ctx context.Context, ownerID int64, req dto.TodoRequest) (*models.Todo, *appErrors.AppError) {
	todo := &models.Todo{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Complete:    *req.Complete,
		OwnerID:     ownerID,
	}
	if err := s.store.Todos.Create(ctx, todo); err != nil {
		return nil, appErrors.NewInternal("error creating todo")
	}
	return todo, nil
}

// Update overwrites all four mutable fields at once. There is no partial
// patch: the request was validated whole before this is called.
func (s *TodoService) Update(ctx context.Context, ownerID, todoID int64, req dto.TodoRequest) *appErrors.AppError {
	todo := &models.Todo{
		ID:          todoID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Complete:    *req.Complete,
		OwnerID:     ownerID,
	}
	if err := s.store.Todos.Update(ctx, todo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NewNotFound("todo")
		}
		return appErrors.NewInternal("error updating todo")
	}
	return nil
}

func (s *TodoService) Delete(ctx context.Context, ownerID, todoID int64) *appErrors.AppError {
	if err := s.store.Todos.Delete(ctx, todoID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NewNotFound("todo")
		}
		return appErrors.NewInternal("error deleting todo")
	}
	return nil
}
