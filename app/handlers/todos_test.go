package main

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dchoi22/todoapp/app/dto"
	"github.com/dchoi22/todoapp/app/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
Todo endpoint test cases (full router):

1. TestTodos_RequireAuth
   - Every todo endpoint is 401 without a token

2. TestTodos_Create
   - 201, owner id comes from the token, not the body

3. TestTodos_Create_ValidationFailure
   - Priority 6, short title, missing complete -> 422

4. TestTodos_Create_MalformedBody
   - Broken JSON -> 400

5. TestTodos_List_OwnerScoped
   - Each user only sees their own todos; empty list is [] not null

6. TestTodos_Get_OtherOwner404
   - Fetching someone else's todo -> 404, same as a missing id

7. TestTodos_Get_BadID
   - Non-numeric and non-positive ids -> 400

8. TestTodos_Update
   - 204, full overwrite visible on subsequent fetch
   - Unknown id -> 404

9. TestTodos_Delete
   - 204, then second delete of the same id -> 404

10. TestTodos_ExpiredToken401
    - Expired token behaves exactly like a missing one

11. TestTodoPages_RedirectWithoutAuth
    - Page endpoints 302 to /auth/login-page and clear the cookie

12. TestTodoPages_WithCookie
    - Pages accept the access_token cookie
*/

const validTodoBody = `{"title":"Buy milk","description":"from the corner store","priority":3,"complete":false}`

func TestTodos_RequireAuth(t *testing.T) {
	ta := newTestApp(t)

	cases := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/todos", ""},
		{http.MethodPost, "/todos", validTodoBody},
		{http.MethodGet, "/todos/1", ""},
		{http.MethodPut, "/todos/1", validTodoBody},
		{http.MethodDelete, "/todos/1", ""},
	}
	for _, tc := range cases {
		rec := ta.do(tc.method, tc.path, "", tc.body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s should require auth", tc.method, tc.path)
	}
}

func TestTodos_Create(t *testing.T) {
	ta := newTestApp(t)
	user := ta.seedUser(t, "alice", "password123")
	token := ta.tokenFor(t, user)

	rec := ta.do(http.MethodPost, "/todos", token, validTodoBody)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created dto.TodoResponse
	decodeJSON(t, rec, &created)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, user.ID, created.OwnerID, "Owner must come from the token")
	assert.False(t, created.Complete)
	assert.NotZero(t, created.ID)

	// A client-supplied owner field is silently ignored.
	smuggled := `{"title":"Take over","description":"not your list","priority":1,"complete":false,"owner_id":999}`
	rec = ta.do(http.MethodPost, "/todos", token, smuggled)
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeJSON(t, rec, &created)
	assert.Equal(t, user.ID, created.OwnerID)
}

func TestTodos_Create_ValidationFailure(t *testing.T) {
	ta := newTestApp(t)
	token := ta.tokenFor(t, ta.seedUser(t, "alice", "password123"))

	bodies := []string{
		`{"title":"Buy milk","description":"from the corner store","priority":6,"complete":false}`,
		`{"title":"ab","description":"from the corner store","priority":3,"complete":false}`,
		`{"title":"Buy milk","description":"from the corner store","priority":3}`,
	}
	for _, body := range bodies {
		rec := ta.do(http.MethodPost, "/todos", token, body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "Body %s should fail validation", body)
	}

	// Nothing was persisted along the way.
	rec := ta.do(http.MethodGet, "/todos", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestTodos_Create_MalformedBody(t *testing.T) {
	ta := newTestApp(t)
	token := ta.tokenFor(t, ta.seedUser(t, "alice", "password123"))

	rec := ta.do(http.MethodPost, "/todos", token, `{"title": "Buy milk",`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTodos_List_OwnerScoped(t *testing.T) {
	ta := newTestApp(t)
	alice := ta.seedUser(t, "alice", "password123")
	bob := ta.seedUser(t, "bob", "password123")
	aliceToken := ta.tokenFor(t, alice)
	bobToken := ta.tokenFor(t, bob)

	require.Equal(t, http.StatusCreated, ta.do(http.MethodPost, "/todos", aliceToken, validTodoBody).Code)

	var aliceList []dto.TodoResponse
	rec := ta.do(http.MethodGet, "/todos", aliceToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &aliceList)
	require.Len(t, aliceList, 1)
	assert.Equal(t, alice.ID, aliceList[0].OwnerID)

	rec = ta.do(http.MethodGet, "/todos", bobToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String(), "Empty list must be [] rather than null")
}

func TestTodos_Get_OtherOwner404(t *testing.T) {
	ta := newTestApp(t)
	aliceToken := ta.tokenFor(t, ta.seedUser(t, "alice", "password123"))
	bobToken := ta.tokenFor(t, ta.seedUser(t, "bob", "password123"))

	rec := ta.do(http.MethodPost, "/todos", aliceToken, validTodoBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created dto.TodoResponse
	decodeJSON(t, rec, &created)

	// Owner sees it.
	rec = ta.do(http.MethodGet, fmt.Sprintf("/todos/%d", created.ID), aliceToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Anyone else gets the same 404 a missing id gives.
	rec = ta.do(http.MethodGet, fmt.Sprintf("/todos/%d", created.ID), bobToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "Someone else's record must 404, not 403")

	rec = ta.do(http.MethodGet, "/todos/9999", aliceToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTodos_Get_BadID(t *testing.T) {
	ta := newTestApp(t)
	token := ta.tokenFor(t, ta.seedUser(t, "alice", "password123"))

	rec := ta.do(http.MethodGet, "/todos/abc", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ta.do(http.MethodGet, "/todos/0", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ta.do(http.MethodGet, "/todos/-1", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTodos_Update(t *testing.T) {
	ta := newTestApp(t)
	token := ta.tokenFor(t, ta.seedUser(t, "alice", "password123"))

	rec := ta.do(http.MethodPost, "/todos", token, validTodoBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created dto.TodoResponse
	decodeJSON(t, rec, &created)

	update := `{"title":"Buy oat milk","description":"the good kind","priority":5,"complete":true}`
	rec = ta.do(http.MethodPut, fmt.Sprintf("/todos/%d", created.ID), token, update)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String(), "204 carries no body")

	rec = ta.do(http.MethodGet, fmt.Sprintf("/todos/%d", created.ID), token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got dto.TodoResponse
	decodeJSON(t, rec, &got)
	assert.Equal(t, "Buy oat milk", got.Title)
	assert.Equal(t, 5, got.Priority)
	assert.True(t, got.Complete)

	rec = ta.do(http.MethodPut, "/todos/9999", token, update)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTodos_Delete(t *testing.T) {
	ta := newTestApp(t)
	token := ta.tokenFor(t, ta.seedUser(t, "alice", "password123"))

	rec := ta.do(http.MethodPost, "/todos", token, validTodoBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created dto.TodoResponse
	decodeJSON(t, rec, &created)

	rec = ta.do(http.MethodDelete, fmt.Sprintf("/todos/%d", created.ID), token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ta.do(http.MethodDelete, fmt.Sprintf("/todos/%d", created.ID), token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "Second delete of the same id must 404")
}

func TestTodos_ExpiredToken401(t *testing.T) {
	ta := newTestApp(t)
	user := ta.seedUser(t, "alice", "password123")

	claims := services.AccessClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-40 * time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	rec := ta.do(http.MethodGet, "/todos", expired, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTodoPages_RedirectWithoutAuth(t *testing.T) {
	ta := newTestApp(t)

	for _, path := range []string{"/todos/todo-page", "/todos/add-todo-page", "/todos/edit-todo-page/1"} {
		rec := ta.do(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusFound, rec.Code, "%s should redirect", path)
		assert.Equal(t, "/auth/login-page", rec.Header().Get("Location"))
	}
}

func TestTodoPages_WithCookie(t *testing.T) {
	ta := newTestApp(t)
	user := ta.seedUser(t, "alice", "password123")
	token := ta.tokenFor(t, user)

	req := ta.newCookieRequest(http.MethodGet, "/todos/todo-page", token)
	rec := ta.serve(req)

	require.Equal(t, http.StatusOK, rec.Code)
	var page map[string]interface{}
	decodeJSON(t, rec, &page)
	assert.Equal(t, "todos", page["page"])
	assert.Equal(t, "alice", page["user"])
}
