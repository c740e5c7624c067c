package handlers_test

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/maynagashev/userservice/internal/handlers"
	"github.com/maynagashev/userservice/internal/middleware"
	"github.com/maynagashev/userservice/internal/models"
	"github.com/maynagashev/userservice/internal/services"
	"github.com/stretchr/testify/mock"
)

const testSecret = "test-secret"

// --- Mock UserService --- //

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, params services.CreateUserParams) (*models.User, error) {
	args := m.Called(ctx, params)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, rawID string) (*models.UserView, error) {
	args := m.Called(ctx, rawID)
	if u := args.Get(0); u != nil {
		return u.(*models.UserView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]models.UserView, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.([]models.UserView), args.Error(1)
	}
	return nil, args.Error(1)
}

// --- Stub TokenService --- //

type failingTokenService struct{}

func (failingTokenService) Issue(int64) (string, error) {
	return "", services.ErrTokenEncode
}

func (failingTokenService) Decode(string) (int64, error) {
	return 0, services.ErrTokenInvalid
}

// setupRouter собирает роутер с обработчиками так же, как сервер.
func setupRouter(us services.UserService, ts services.TokenService) *chi.Mux {
	userHandler := handlers.NewUserHandler(us)
	authHandler := handlers.NewAuthHandler(us, ts)

	r := chi.NewRouter()
	r.Get("/ping", userHandler.Ping)
	r.Post("/users", userHandler.Create)
	r.Get("/users", userHandler.List)
	r.Get("/users/{id}", userHandler.Get)
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	r.With(middleware.Authenticator(ts)).Get("/auth/logout", authHandler.Logout)
	return r
}

func newTokenService() services.TokenService {
	return services.NewTokenService(testSecret, time.Hour)
}

// Проверка соответствия интерфейсу.
var _ services.UserService = (*MockUserService)(nil)
