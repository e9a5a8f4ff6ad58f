package models

// Todo is owned by exactly one user. Every single-record operation on the
// store filters by both id and owner id.
type Todo struct {
	ID          int64
	Title       string
	Description string
	Priority    int
	Complete    bool
	OwnerID     int64
}
