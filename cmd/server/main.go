package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/maynagashev/userservice/internal/config"
	"github.com/maynagashev/userservice/internal/handlers"
	appmiddleware "github.com/maynagashev/userservice/internal/middleware"
	"github.com/maynagashev/userservice/internal/repository"
	"github.com/maynagashev/userservice/internal/services"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultShutdownTimeout = 15 * time.Second
)

// Подменяется в тестах.
var newDB = repository.NewDB

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db          *sqlx.DB
	tokens      services.TokenService
	userHandler *handlers.UserHandler
	authHandler *handlers.AuthHandler
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop вызван явно перед выходом
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run(ctx context.Context, args []string) error {
	cfg, err := parseFlags(args, os.LookupEnv)
	if err != nil {
		return err
	}
	log.Printf("Запуск сервера пользователей (профиль: %s)...", cfg.Profile)

	deps, err := setupDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	defer func() {
		if closeErr := deps.db.Close(); closeErr != nil {
			log.Printf("Ошибка закрытия соединения с БД: %v", closeErr)
		}
	}()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      setupRouter(deps, cfg.Debug),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	return serve(ctx, server, cfg)
}

// serve запускает сервер и останавливает его при отмене контекста.
func serve(ctx context.Context, server *http.Server, cfg *config.Config) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if cfg.TLSEnabled() {
			log.Printf("Запуск HTTPS-сервера на порту %s (сертификат: %s)", cfg.Port, cfg.CertFile)
			err = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			log.Printf("Запуск HTTP-сервера на порту %s", cfg.Port)
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Получен сигнал остановки, завершаем работу...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	log.Println("Сервер остановлен")
	return nil
}

// setupDependencies инициализирует и возвращает все необходимые зависимости сервера.
func setupDependencies(ctx context.Context, cfg *config.Config) (*dependencies, error) {
	db, err := newDB(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
	}
	log.Println("Соединение с БД успешно установлено.")

	if cfg.Migrate {
		if err = repository.Migrate(ctx, db, cfg.DatabaseDriver); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				log.Printf("Ошибка закрытия соединения с БД при ошибке миграций: %v", closeErr)
			}
			return nil, fmt.Errorf("ошибка применения миграций: %w", err)
		}
	}

	userRepo := repository.NewUserRepository(db)
	userService := services.NewUserService(userRepo, cfg.BcryptCost)
	tokens := services.NewTokenService(cfg.SecretKey, cfg.TokenTTL)

	return &dependencies{
		db:          db,
		tokens:      tokens,
		userHandler: handlers.NewUserHandler(userService),
		authHandler: handlers.NewAuthHandler(userService, tokens),
	}, nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(deps *dependencies, debug bool) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if debug {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// --- Маршруты --- //
	r.Get("/ping", deps.userHandler.Ping)

	r.Post("/users", deps.userHandler.Create)
	r.Get("/users", deps.userHandler.List)
	r.Get("/users/{id}", deps.userHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", deps.authHandler.Register)
		r.Post("/login", deps.authHandler.Login)

		// Приватные маршруты (требуют аутентификации)
		r.With(appmiddleware.Authenticator(deps.tokens)).Get("/logout", deps.authHandler.Logout)
	})
	return r
}
