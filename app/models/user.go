package models

import "database/sql"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID             int64
	Username       string
	Email          string
	FirstName      string
	LastName       string
	HashedPassword string
	Role           string
	PhoneNumber    sql.NullString
	IsActive       bool
}

func IsValidRole(r string) bool {
	return r == RoleAdmin || r == RoleUser
}
