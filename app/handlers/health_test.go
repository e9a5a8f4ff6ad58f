package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
Health endpoint test cases:

1. TestHealth_AllDisabled
   - No wired dependencies -> every check "disabled", overall healthy

2. TestHealth_WithRedis
   - Live redis reports healthy through the full router
*/

func TestHealth_AllDisabled(t *testing.T) {
	app := &application{config: config{addr: ":0"}}

	rec := (&testApp{app: app, router: app.mount()}).do(http.MethodGet, "/health", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "disabled", resp.Checks["database"].Status)
	assert.Equal(t, "disabled", resp.Checks["redis"].Status)
	assert.Equal(t, "disabled", resp.Checks["rabbitmq"].Status)
	assert.NotEmpty(t, resp.Uptime)
}

func TestHealth_WithRedis(t *testing.T) {
	ta := newTestApp(t)

	rec := ta.do(http.MethodGet, "/health", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Checks["redis"].Status)
	assert.Equal(t, "disabled", resp.Checks["database"].Status)
}
