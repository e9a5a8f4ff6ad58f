package main

import (
	"encoding/json"
	"net/http"

	"github.com/dchoi22/todoapp/app/dto"
	"github.com/dchoi22/todoapp/app/errors"
	"github.com/dchoi22/todoapp/app/metrics"
	authmw "github.com/dchoi22/todoapp/app/middleware"
	"github.com/dchoi22/todoapp/app/services"
	"github.com/go-chi/render"
)

// registerHandler handles user registration
func (app *application) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeErrorResponse(w, errors.NewInvalidInput("invalid request body"))
		return
	}

	// Sanitize before validation. Passwords keep their special characters,
	// they are only trimmed and length-capped.
	req.Username = sanitizeUsername(req.Username, 50)
	req.Email = sanitizeEmail(req.Email, 255)
	req.FirstName = sanitizeInput(req.FirstName, 100, false)
	req.LastName = sanitizeInput(req.LastName, 100, false)
	req.PhoneNumber = sanitizeInput(req.PhoneNumber, 20, false)
	req.Password = sanitizeInput(req.Password, 128, true)

	if err := validateRequest(&req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	resp, appErr := app.authService.Register(r.Context(), req)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	metrics.RecordRegistration()
	writeJSON(w, http.StatusCreated, resp)
}

// loginHandler verifies credentials and issues the access token. The token
// goes out twice: in the JSON body for API clients and in the access_token
// cookie for page flows.
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeErrorResponse(w, errors.NewInvalidInput("invalid request body"))
		return
	}

	req.Username = sanitizeUsername(req.Username, 50)
	req.Password = sanitizeInput(req.Password, 128, true)

	if err := validateRequest(&req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	resp, appErr := app.authService.Login(r.Context(), req)
	if appErr != nil {
		metrics.RecordLoginFailed()
		writeErrorResponse(w, appErr)
		return
	}

	metrics.RecordLogin()
	authmw.SetAccessTokenCookie(w, resp.AccessToken, services.AccessTokenTTL)
	w.Header().Set("Authorization", "Bearer "+resp.AccessToken)
	writeJSON(w, http.StatusOK, resp)
}

// logoutHandler clears the page-flow cookie. Tokens are stateless, so there
// is nothing to revoke server-side; API clients simply drop the token.
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	authmw.ClearAccessTokenCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// loginPageHandler is the redirect target for unauthenticated page requests.
// Template rendering lives elsewhere; this serves the page's data.
func (app *application) loginPageHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"page":    "login",
		"message": "please log in",
	})
}

// meHandler returns the authenticated user's profile.
func (app *application) meHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.UserIDFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, errors.NewUnauthorized("authentication failed"))
		return
	}

	user, err := app.store.Users.GetByID(r.Context(), userID)
	if err != nil {
		writeErrorResponse(w, errors.NewNotFound("user"))
		return
	}

	writeJSON(w, http.StatusOK, services.ToUserResponse(user))
}

// writeErrorResponse writes an error response in a consistent format
func writeErrorResponse(w http.ResponseWriter, appErr *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)

	errResp := dto.ErrorResponse{
		Error: appErr.Message,
		Code:  string(appErr.Code),
	}

	json.NewEncoder(w).Encode(errResp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
