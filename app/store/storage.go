package store

import (
	"context"
	"database/sql"

	"github.com/dchoi22/todoapp/app/models"
)

type Storage struct {
	Users interface {
		GetByID(ctx context.Context, id int64) (*models.User, error)
		GetByUsername(ctx context.Context, username string) (*models.User, error)
		GetByEmail(ctx context.Context, email string) (*models.User, error)
		Create(ctx context.Context, user *models.User) error
	}
	Todos interface {
		ListByOwner(ctx context.Context, ownerID int64) ([]models.Todo, error)
		GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Todo, error)
		Create(ctx context.Context, todo *models.Todo) error
		Update(ctx context.Context, todo *models.Todo) error
		Delete(ctx context.Context, id, ownerID int64) error
	}
}

func NewStorage(db *sql.DB) Storage {
	return Storage{
		Users: &UsersStore{db: db},
		Todos: &TodosStore{db: db},
	}
}
