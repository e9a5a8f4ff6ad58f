package store

import (
	"context"
	"database/sql"

	"github.com/dchoi22/todoapp/app/models"
)

type UsersStore struct {
	db *sql.DB
}

func (s *UsersStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, username, email, first_name, last_name,
	hashed_password, role, phone_number, is_active FROM users WHERE id = $1`
	var user models.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.HashedPassword,
		&user.Role,
		&user.PhoneNumber,
		&user.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UsersStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, email, first_name, last_name,
	hashed_password, role, phone_number, is_active FROM users WHERE username = $1`
	var user models.User
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.HashedPassword,
		&user.Role,
		&user.PhoneNumber,
		&user.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UsersStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, username, email, first_name, last_name,
	hashed_password, role, phone_number, is_active FROM users WHERE email = $1`
	var user models.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.HashedPassword,
		&user.Role,
		&user.PhoneNumber,
		&user.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UsersStore) Create(ctx context.Context, user *models.User) error {
	query := `
	INSERT INTO users (username, email, first_name, last_name, hashed_password, role, phone_number, is_active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.HashedPassword,
		user.Role,
		user.PhoneNumber,
		user.IsActive,
	).Scan(&user.ID)

	if err != nil {
		return err
	}

	return nil
}
