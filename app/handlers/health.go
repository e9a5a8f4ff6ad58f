package main

import (
	"context"
	"net/http"
	"time"
)

var startTime = time.Now()

// CheckResult is the outcome of a single dependency probe.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status  string                 `json:"status"`
	Uptime  string                 `json:"uptime"`
	Version string                 `json:"version"`
	Checks  map[string]CheckResult `json:"checks"`
}

func (app *application) checkDatabase(ctx context.Context) CheckResult {
	if app.db == nil {
		return CheckResult{Status: "disabled"}
	}
	if err := app.db.PingContext(ctx); err != nil {
		return CheckResult{Status: "unhealthy", Error: err.Error()}
	}
	return CheckResult{Status: "healthy"}
}

func (app *application) checkRedis(ctx context.Context) CheckResult {
	if app.redisClient == nil {
		return CheckResult{Status: "disabled"}
	}
	if err := app.redisClient.Ping(ctx).Err(); err != nil {
		return CheckResult{Status: "unhealthy", Error: err.Error()}
	}
	return CheckResult{Status: "healthy"}
}

func (app *application) checkRabbitMQ() CheckResult {
	if app.rabbitConn == nil {
		return CheckResult{Status: "disabled"}
	}
	if app.rabbitConn.IsClosed() {
		return CheckResult{Status: "unhealthy", Error: "connection closed"}
	}
	return CheckResult{Status: "healthy"}
}

// healthHandler probes every wired dependency. A disabled dependency does not
// count against overall health; an unhealthy one flips the status and the
// response code.
func (app *application) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]CheckResult{
		"database": app.checkDatabase(ctx),
		"redis":    app.checkRedis(ctx),
		"rabbitmq": app.checkRabbitMQ(),
	}

	status := "healthy"
	code := http.StatusOK
	for _, c := range checks {
		if c.Status == "unhealthy" {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, code, HealthResponse{
		Status:  status,
		Uptime:  time.Since(startTime).Round(time.Second).String(),
		Version: version,
		Checks:  checks,
	})
}
