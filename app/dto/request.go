package dto

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50,username_format"`
	Email       string `json:"email" validate:"required,email,max=255"`
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	Role        string `json:"role" validate:"omitempty,oneof=admin user"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
}

// LoginRequest represents the data needed to login
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// TodoRequest carries the four mutable Todo fields. All of them are required:
// updates overwrite the record whole, a partially-specified body is rejected
// before anything is persisted. Complete is a pointer so "false" and "absent"
// validate differently.
type TodoRequest struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description" validate:"required,min=3,max=100"`
	Priority    int    `json:"priority" validate:"required,gte=1,lte=5"`
	Complete    *bool  `json:"complete" validate:"required"`
}

// BookRequest carries the mutable Book fields.
type BookRequest struct {
	Title         string `json:"title" validate:"required,min=3"`
	Author        string `json:"author" validate:"required,min=1"`
	Description   string `json:"description" validate:"required,min=1,max=100"`
	Rating        int    `json:"rating" validate:"required,gte=1,lte=5"`
	PublishedDate int    `json:"published_date" validate:"required,gte=2000,lte=2030"`
}
