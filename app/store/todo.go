package store

import (
	"context"
	"database/sql"

	"github.com/dchoi22/todoapp/app/models"
)

type TodosStore struct {
	db *sql.DB
}

func (s *TodosStore) ListByOwner(ctx context.Context, ownerID int64) ([]models.Todo, error) {
	query := `SELECT id, title, description, priority, complete, owner_id
	FROM todos WHERE owner_id = $1`
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		var todo models.Todo
		err := rows.Scan(
			&todo.ID,
			&todo.Title,
			&todo.Description,
			&todo.Priority,
			&todo.Complete,
			&todo.OwnerID,
		)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return todos, nil
}

// GetByIDAndOwner fetches a single todo with the owner-scoped filter. A row
// that exists under a different owner scans as sql.ErrNoRows, same as a row
// that does not exist at all.
func (s *TodosStore) GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Todo, error) {
	query := `SELECT id, title, description, priority, complete, owner_id
	FROM todos WHERE id = $1 AND owner_id = $2`
	var todo models.Todo
	err := s.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&todo.ID,
		&todo.Title,
		&todo.Description,
		&todo.Priority,
		&todo.Complete,
		&todo.OwnerID,
	)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (s *TodosStore) Create(ctx context.Context, todo *models.Todo) error {
	query := `
	INSERT INTO todos (title, description, priority, complete, owner_id)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		todo.Title,
		todo.Description,
		todo.Priority,
		todo.Complete,
		todo.OwnerID,
	).Scan(&todo.ID)

	if err != nil {
		return err
	}

	return nil
}

// Update overwrites all four mutable fields of the todo identified by
// todo.ID and todo.OwnerID. Returns sql.ErrNoRows when the owner-scoped
// filter matches nothing.
func (s *TodosStore) Update(ctx context.Context, todo *models.Todo) error {
	query := `UPDATE todos SET title = $1, description = $2, priority = $3, complete = $4
	WHERE id = $5 AND owner_id = $6`
	res, err := s.db.ExecContext(ctx, query,
		todo.Title,
		todo.Description,
		todo.Priority,
		todo.Complete,
		todo.ID,
		todo.OwnerID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the todo identified by id and ownerID. Returns
// sql.ErrNoRows when the owner-scoped filter matches nothing, so a second
// delete of the same id fails the same way as deleting someone else's record.
func (s *TodosStore) Delete(ctx context.Context, id, ownerID int64) error {
	query := `DELETE FROM todos WHERE id = $1 AND owner_id = $2`
	res, err := s.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
