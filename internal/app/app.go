package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"taskManagement/internal/config"
	"taskManagement/internal/handlers"
	"taskManagement/internal/logger"
	"taskManagement/internal/middleware"
	"taskManagement/internal/repository/task/inmemory"
	"taskManagement/internal/repository/task/postgres"
	"taskManagement/internal/security"
	"taskManagement/internal/security/keycloak"
	"taskManagement/internal/service"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	tasks     service.TaskRepository
	projects  service.ProjectRepository
	users     handlers.UserDirectory
	verifier  security.TokenVerifier
	metrics   *middleware.Metrics
	shutdowns []func(context.Context) error // выполняются в обратном порядке
	stopOnce  sync.Once
}

type Option func(*App)

// WithUserDirectory подменяет поиск пользователей, Keycloak тогда не подключается
func WithUserDirectory(users handlers.UserDirectory) Option {
	return func(a *App) {
		a.users = users
	}
}

// WithVerifier подменяет проверку токенов
func WithVerifier(verifier security.TokenVerifier) Option {
	return func(a *App) {
		a.verifier = verifier
	}
}

func New(cfg *config.Config, options ...Option) *App {
	a := &App{
		config:    cfg,
		shutdowns: make([]func(context.Context) error, 0),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *App) onShutdown(fn func(context.Context) error) {
	a.shutdowns = append(a.shutdowns, fn)
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(logger.Options{
		Development: a.config.Logging.Development,
		Level:       a.config.Logging.Level,
		File:        a.config.Logging.File,
		MaxSizeMB:   a.config.Logging.MaxSizeMB,
		MaxBackups:  a.config.Logging.MaxBackups,
		MaxAgeDays:  a.config.Logging.MaxAgeDays,
	}); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.onShutdown(func(context.Context) error {
		logger.Info("Завершение работы логгирования...")
		if err := logger.Close(); err != nil {
			return fmt.Errorf("закрытие файла логов: %w", err)
		}
		return nil
	})

	if err := a.initRepository(ctx); err != nil {
		return err
	}
	if err := a.initUsers(ctx); err != nil {
		return err
	}
	if err := a.initVerifier(ctx); err != nil {
		return err
	}

	a.initRouter()

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           otelhttp.NewHandler(a.router, "tasks-api"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("auth_mode", a.config.Auth.Mode))
	return nil
}

func (a *App) initRepository(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		storage, err := postgres.New(ctx, a.config.Database.URL, postgres.PoolOptions{
			MaxConns:        a.config.Database.MaxConnections,
			MinConns:        a.config.Database.MinConnections,
			MaxConnIdleTime: a.config.Database.IdleTimeout,
		})
		if err != nil {
			return fmt.Errorf("подключение к PostgreSQL: %w", err)
		}
		a.onShutdown(func(context.Context) error {
			storage.Close()
			return nil
		})

		if err := storage.Migrate(); err != nil {
			return err
		}
		a.tasks = storage
		a.projects = storage.Projects()
	default:
		a.tasks = inmemory.NewTaskStorage()
		a.projects = inmemory.NewProjectStorage()
	}
	return nil
}

func (a *App) initUsers(ctx context.Context) error {
	if a.users != nil {
		return nil
	}

	lookup, err := keycloak.New(ctx, keycloak.Config{
		URL:          a.config.Keycloak.URL,
		Realm:        a.config.Keycloak.Realm,
		ClientID:     a.config.Keycloak.ClientID,
		ClientSecret: a.config.Keycloak.ClientSecret,
	})
	if err != nil {
		return fmt.Errorf("подключение к Keycloak: %w", err)
	}
	a.onShutdown(lookup.Close)
	a.users = lookup
	return nil
}

func (a *App) initVerifier(ctx context.Context) error {
	if a.verifier != nil {
		return nil
	}

	switch a.config.Auth.Mode {
	case config.AuthModeDev:
		logger.Warn("Аутентификация в режиме разработки, токены подписываются общим секретом")
		a.verifier = security.NewHMACVerifier(a.config.Auth.DevSecret)
	default:
		verifier, err := security.NewOIDCVerifier(ctx, a.config.Auth.IssuerURL, a.config.Auth.ClientID)
		if err != nil {
			return fmt.Errorf("инициализация OIDC: %w", err)
		}
		a.verifier = verifier
	}
	return nil
}

func (a *App) initRouter() {
	taskService := service.NewTaskService(a.tasks, a.projects)
	projectService := service.NewProjectService(a.projects)

	taskHandler := handlers.NewTaskHandler(taskService, a.users)
	projectHandler := handlers.NewProjectHandler(projectService)
	userHandler := handlers.NewUserHandler(a.users)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.config.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID", middleware.TimezoneHeader},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(a.config.Server.RateLimit))
	if a.config.Metrics.Enabled {
		a.metrics = middleware.NewMetrics("tasks")
		r.Use(a.metrics.Middleware)
	}
	if a.config.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(a.config.Server.RequestTimeout))
	}

	r.Get("/health", taskHandler.HealthCheck) // GET /health
	if a.metrics != nil {
		r.Handle(a.config.Metrics.Path, a.metrics.Handler()) // GET /metrics
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(a.verifier))
		handlers.RegisterRoutes(r, taskHandler, projectHandler, userHandler,
			middleware.RequireAuthority(security.RoleAdmin))
	})

	a.router = r
}

// Handler - корневой обработчик приложения
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run обслуживает запросы до отмены ctx, затем завершает работу
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("запуск сервера: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown останавливает сервер и освобождает ресурсы; повторные вызовы ничего не делают
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	a.stopOnce.Do(func() {
		logger.Info("Завершение работы приложения...")

		if a.server != nil {
			if err := a.server.Shutdown(ctx); err != nil {
				logger.Error("HTTP: Ошибка остановки сервера", err)
				errs = append(errs, fmt.Errorf("остановка сервера: %w", err))
			}
		}

		for i := len(a.shutdowns) - 1; i >= 0; i-- {
			if err := a.shutdowns[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
