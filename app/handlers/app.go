package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dchoi22/todoapp/app/logger"
	"github.com/dchoi22/todoapp/app/metrics"
	authmw "github.com/dchoi22/todoapp/app/middleware"
	"github.com/dchoi22/todoapp/app/services"
	"github.com/dchoi22/todoapp/app/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

const version = "1.0.0"

type application struct {
	config      config
	store       store.Storage
	authService *services.AuthService
	todoService *services.TodoService
	bookService *services.BookService
	redisClient *redis.Client
	db          interface {
		PingContext(ctx context.Context) error
		Close() error
	}
	rabbitConn interface {
		IsClosed() bool
		Close() error
	}
	rabbitCh interface {
		IsClosed() bool
		Close() error
	}
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

type config struct {
	addr string
	db   dbConfig
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(authmw.RequestIDTracing()) // Propagate request ID to logger and context
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Metrics middleware - record HTTP metrics
	r.Use(authmw.Metrics())

	// Security headers - must be early to protect all responses
	r.Use(authmw.SecurityHeaders())

	// CORS middleware - must be early in the chain to handle preflight requests
	r.Use(authmw.CORS())

	// Request body size limit
	r.Use(authmw.BodyLimitFromEnv())

	r.Use(middleware.Timeout(60 * time.Second))

	loginLimit := authmw.RouteLimit{Name: "login", Capacity: 5, Window: time.Minute}
	registerLimit := authmw.RouteLimit{Name: "register", Capacity: 10, Window: 5 * time.Minute}
	todosLimit := authmw.RouteLimit{Name: "todos", Capacity: 120, Window: time.Minute}
	healthCheckLimit := authmw.RouteLimit{Name: "healthCheck", Capacity: 20, Window: time.Minute}

	r.With(authmw.RateLimit(app.redisClient, healthCheckLimit, authmw.PrincipalIP())).Get("/health", app.healthHandler)

	// Prometheus metrics endpoint
	r.Get("/metrics", metrics.MetricsHandler().ServeHTTP)

	r.Route("/auth", func(r chi.Router) {
		r.With(authmw.RateLimit(app.redisClient, registerLimit, authmw.PrincipalIP())).Post("/register", app.registerHandler)
		r.With(authmw.RateLimit(app.redisClient, loginLimit, authmw.PrincipalIP())).Post("/login", app.loginHandler)
		r.Post("/logout", app.logoutHandler)
		r.Get("/login-page", app.loginPageHandler)

		r.Group(func(pr chi.Router) {
			pr.Use(authmw.JWTAuth())
			pr.Get("/me", app.meHandler)
		})
	})

	r.Route("/todos", func(r chi.Router) {
		// Page endpoints first; chi matches static segments ahead of the
		// {todoID} wildcard. Missing or expired credentials redirect to the
		// login page instead of failing with a 401.
		r.Group(func(pg chi.Router) {
			pg.Use(authmw.PageAuth("/auth/login-page"))
			pg.Get("/todo-page", app.todoPageHandler)
			pg.Get("/add-todo-page", app.addTodoPageHandler)
			pg.Get("/edit-todo-page/{todoID}", app.editTodoPageHandler)
		})

		// API endpoints: hard 401 on bad credentials.
		r.Group(func(api chi.Router) {
			api.Use(authmw.JWTAuth())
			api.Use(authmw.RateLimit(app.redisClient, todosLimit, authmw.PrincipalUserOrIP()))
			api.Get("/", app.listTodosHandler)
			api.Post("/", app.createTodoHandler)
			api.Get("/{todoID}", app.getTodoHandler)
			api.Put("/{todoID}", app.updateTodoHandler)
			api.Delete("/{todoID}", app.deleteTodoHandler)
		})
	})

	// Book catalog carries no auth.
	r.Route("/books", func(r chi.Router) {
		r.Get("/", app.listBooksHandler)
		r.Post("/", app.createBookHandler)
		r.Get("/{bookID}", app.getBookHandler)
		r.Put("/{bookID}", app.updateBookHandler)
		r.Delete("/{bookID}", app.deleteBookHandler)
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  time.Minute,
	}
	logger.Logger.Info().Str("addr", app.config.addr).Msg("Starting server")
	return srv.ListenAndServe()
}

// runWithGracefulShutdown starts the server with graceful shutdown support.
// It handles SIGTERM and SIGINT signals, allowing in-flight requests to
// complete before closing connections. The RabbitMQ arguments may be nil
// when event publishing is not configured.
func (app *application) runWithGracefulShutdown(
	mux http.Handler,
	db interface{ Close() error },
	redisClient interface{ Close() error },
	rabbitConn interface{ Close() error },
	rabbitCh interface{ Close() error },
) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  time.Minute,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Logger.Info().Str("addr", app.config.addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Logger.Info().Str("signal", sig.String()).Msg("Received signal, starting graceful shutdown")
	}

	shutdownTimeout := 30 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop accepting new connections, wait for in-flight requests.
	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	logger.Logger.Info().Msg("Server gracefully stopped")

	logger.Logger.Info().Msg("Closing database connection")
	if err := db.Close(); err != nil {
		logger.Logger.Error().Err(err).Msg("Error closing database")
	}

	logger.Logger.Info().Msg("Closing Redis connection")
	if err := redisClient.Close(); err != nil {
		logger.Logger.Error().Err(err).Msg("Error closing Redis")
	}

	if rabbitCh != nil {
		logger.Logger.Info().Msg("Closing RabbitMQ channel")
		if err := rabbitCh.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Error closing RabbitMQ channel")
		}
	}

	if rabbitConn != nil {
		logger.Logger.Info().Msg("Closing RabbitMQ connection")
		if err := rabbitConn.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Error closing RabbitMQ connection")
		}
	}

	logger.Logger.Info().Msg("Shutdown complete")
	return nil
}
