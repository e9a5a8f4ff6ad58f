package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	authmw "github.com/dchoi22/todoapp/app/middleware"
	"github.com/dchoi22/todoapp/app/models"
	"github.com/dchoi22/todoapp/app/services"
	"github.com/dchoi22/todoapp/app/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memUsersStore backs the full-router tests without a database.
type memUsersStore struct {
	users  map[string]*models.User
	nextID int64
}

func newMemUsersStore() *memUsersStore {
	return &memUsersStore{users: map[string]*models.User{}, nextID: 1}
}

func (m *memUsersStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memUsersStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memUsersStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memUsersStore) Create(ctx context.Context, user *models.User) error {
	user.ID = m.nextID
	m.nextID++
	m.users[user.Username] = user
	return nil
}

// memTodosStore enforces the owner filter the same way the SQL store does.
type memTodosStore struct {
	todos  map[int64]models.Todo
	nextID int64
}

func newMemTodosStore() *memTodosStore {
	return &memTodosStore{todos: map[int64]models.Todo{}, nextID: 1}
}

func (m *memTodosStore) ListByOwner(ctx context.Context, ownerID int64) ([]models.Todo, error) {
	out := []models.Todo{}
	for id := int64(1); id < m.nextID; id++ {
		if t, ok := m.todos[id]; ok && t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTodosStore) GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Todo, error) {
	t, ok := m.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (m *memTodosStore) Create(ctx context.Context, todo *models.Todo) error {
	todo.ID = m.nextID
	m.nextID++
	m.todos[todo.ID] = *todo
	return nil
}

func (m *memTodosStore) Update(ctx context.Context, todo *models.Todo) error {
	existing, ok := m.todos[todo.ID]
	if !ok || existing.OwnerID != todo.OwnerID {
		return sql.ErrNoRows
	}
	m.todos[todo.ID] = *todo
	return nil
}

func (m *memTodosStore) Delete(ctx context.Context, id, ownerID int64) error {
	existing, ok := m.todos[id]
	if !ok || existing.OwnerID != ownerID {
		return sql.ErrNoRows
	}
	delete(m.todos, id)
	return nil
}

type testApp struct {
	app    *application
	router http.Handler
	users  *memUsersStore
	todos  *memTodosStore
}

// newTestApp wires the full router over in-memory stores, a miniredis-backed
// rate limiter and the real JWT path.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("RATE_LIMIT_ENABLED", "true")

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	users := newMemUsersStore()
	todos := newMemTodosStore()
	storage := store.Storage{Users: users, Todos: todos}

	app := &application{
		config:      config{addr: ":0"},
		store:       storage,
		authService: services.NewAuthService(storage, nil),
		todoService: services.NewTodoService(storage),
		bookService: services.NewBookService(store.NewSeededBooksStore()),
		redisClient: rdb,
	}

	return &testApp{
		app:    app,
		router: app.mount(),
		users:  users,
		todos:  todos,
	}
}

// seedUser creates a user directly in the store and returns it.
func (ta *testApp) seedUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Username:       username,
		Email:          username + "@example.com",
		FirstName:      "Test",
		LastName:       "User",
		HashedPassword: string(hash),
		Role:           models.RoleUser,
		IsActive:       true,
	}
	require.NoError(t, ta.users.Create(context.Background(), u))
	return u
}

// tokenFor issues an access token for a seeded user.
func (ta *testApp) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := services.GenerateAccessToken(user.Username, user.ID, user.Role)
	require.NoError(t, err)
	return token
}

// do runs a request through the router and returns the recorder.
func (ta *testApp) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "10.0.0.1:1234"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ta.router.ServeHTTP(rec, req)
	return rec
}

// newCookieRequest builds a request carrying the token in the access_token
// cookie instead of the Authorization header.
func (ta *testApp) newCookieRequest(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.AddCookie(&http.Cookie{Name: authmw.AccessTokenCookie, Value: token})
	return req
}

func (ta *testApp) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ta.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
