package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dchoi22/todoapp/app/dto"
	appErrors "github.com/dchoi22/todoapp/app/errors"
	"github.com/dchoi22/todoapp/app/logger"
	"github.com/dchoi22/todoapp/app/models"
	"github.com/dchoi22/todoapp/app/store"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration and credential verification.
type AuthService struct {
	store     store.Storage
	publisher EventPublisher
}

func NewAuthService(store store.Storage, publisher EventPublisher) *AuthService {
	return &AuthService{
		store:     store,
		publisher: publisher,
	}
}

// Register creates a new user. Input format validation already happened in
// the handler layer; this checks business constraints and persists.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, *appErrors.AppError) {
	existing, err := s.store.Users.GetByUsername(ctx, req.Username)
	if err == nil && existing != nil {
		return nil, appErrors.NewConflict("username already in use")
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewInternal("database error while checking username")
	}

	existing, err = s.store.Users.GetByEmail(ctx, req.Email)
	if err == nil && existing != nil {
		return nil, appErrors.NewConflict("email already in use")
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewInternal("database error while checking email")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.NewInternal("error hashing password")
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Username:       req.Username,
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		HashedPassword: string(hashed),
		Role:           role,
		PhoneNumber:    sql.NullString{String: req.PhoneNumber, Valid: req.PhoneNumber != ""},
		IsActive:       true,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		return nil, appErrors.NewInternal("error creating user")
	}

	if s.publisher != nil {
		if err := s.publisher.PublishUserRegistered(ctx, user.Username, user.Email); err != nil {
			// Registration already succeeded; the event is best-effort.
			logger.Logger.Error().
				Err(err).
				Int64("user_id", user.ID).
				Msg("failed to publish user.registered event")
		}
	}

	return &dto.RegisterResponse{
		Message: "User registered successfully",
	}, nil
}

// Authenticate verifies a username/password pair. Unknown username and wrong
// password produce the same failure so callers cannot enumerate accounts.
func (s *AuthService) Authenticate(ctx context.Context, req dto.LoginRequest) (*models.User, *appErrors.AppError) {
	user, err := s.store.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewUnauthorized("invalid username or password")
		}
		return nil, appErrors.NewInternal("error getting user by username")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, appErrors.NewUnauthorized("invalid username or password")
		}
		return nil, appErrors.NewInternal("error verifying password")
	}

	return user, nil
}

// Login authenticates and issues an access token.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, *appErrors.AppError) {
	user, appErr := s.Authenticate(ctx, req)
	if appErr != nil {
		return nil, appErr
	}

	accessToken, err := GenerateAccessToken(user.Username, user.ID, user.Role)
	if err != nil {
		return nil, appErrors.NewInternal("error generating access token")
	}

	return &dto.AuthResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		User:        ToUserResponse(user),
	}, nil
}

// ToUserResponse maps a stored user to its API shape.
func ToUserResponse(user *models.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		IsActive:  user.IsActive,
	}
	if user.PhoneNumber.Valid {
		resp.PhoneNumber = user.PhoneNumber.String
	}
	return resp
}
