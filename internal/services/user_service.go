package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/maynagashev/userservice/internal/models"
	"github.com/maynagashev/userservice/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// UserService определяет интерфейс сервиса учетных записей.
type UserService interface {
	// Create валидирует данные, хеширует пароль и сохраняет пользователя.
	Create(ctx context.Context, params CreateUserParams) (*models.User, error)
	// Authenticate проверяет пару email/пароль.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	// GetUser возвращает пользователя по сырому идентификатору из URL.
	// Для некорректного или неизвестного идентификатора возвращает nil без ошибки.
	GetUser(ctx context.Context, rawID string) (*models.UserView, error)
	// ListUsers возвращает всех пользователей, сначала новые.
	ListUsers(ctx context.Context) ([]models.UserView, error)
}

// CreateUserParams - входные данные для создания пользователя.
// CreatedAt задается явно только в тестах, иначе берется текущее время.
type CreateUserParams struct {
	Username  string `validate:"required"`
	Email     string `validate:"required"`
	Password  string `validate:"required"`
	CreatedAt *time.Time
}

type credentials struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// Убедимся, что userService удовлетворяет интерфейсу UserService.
var _ UserService = (*userService)(nil)

type userService struct {
	userRepo   repository.UserRepository
	validate   *validator.Validate
	bcryptCost int
	now        func() time.Time
}

// NewUserService создает новый экземпляр сервиса пользователей.
// bcryptCost - фактор сложности хеширования (низкий для тестов, высокий для продакшена).
func NewUserService(userRepo repository.UserRepository, bcryptCost int) UserService {
	return &userService{
		userRepo:   userRepo,
		validate:   validator.New(),
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// Create создает нового пользователя.
func (s *userService) Create(ctx context.Context, params CreateUserParams) (*models.User, error) {
	if err := s.validate.Struct(params); err != nil {
		log.Printf("[UserService] Невалидные данные пользователя: %v", err)
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, describeValidation(err))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: пароль длиннее 72 байт", ErrInvalidPayload)
		}
		log.Printf("[UserService] Ошибка хеширования пароля для '%s': %v", params.Username, err)
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	// "Сейчас" вычисляется на каждый вызов, а не один раз при старте
	createdAt := s.now().UTC()
	if params.CreatedAt != nil {
		createdAt = params.CreatedAt.UTC()
	}

	user := &models.User{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: string(hashedPassword),
		Active:       true,
		CreatedAt:    createdAt,
	}

	user.ID, err = s.userRepo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			log.Printf("[UserService] Попытка создать существующего пользователя: %s", params.Username)
			return nil, ErrUserExists
		}
		log.Printf("[UserService] Ошибка репозитория при создании '%s': %v", params.Username, err)
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	log.Printf("[UserService] Пользователь '%s' создан (ID: %d)", user.Username, user.ID)
	return user, nil
}

// Authenticate возвращает пользователя, если пароль совпадает с сохраненным хешем.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if err := s.validate.Struct(credentials{Email: email, Password: password}); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, describeValidation(err))
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("[UserService] Попытка входа несуществующего пользователя: %s", email)
			return nil, ErrInvalidCredentials // Общая ошибка для несуществующего пользователя и неверного пароля
		}
		log.Printf("[UserService] Ошибка репозитория при поиске '%s': %v", email, err)
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Printf("[UserService] Неверный пароль для пользователя: %s", email)
		return nil, ErrInvalidCredentials
	}

	log.Printf("[UserService] Пользователь '%s' успешно аутентифицирован", user.Username)
	return user, nil
}

// GetUser находит пользователя по идентификатору из пути запроса.
func (s *userService) GetUser(ctx context.Context, rawID string) (*models.UserView, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		log.Printf("[UserService] Некорректный идентификатор пользователя: %q", rawID)
		return nil, nil //nolint:nilnil // Некорректный ID равносилен отсутствию пользователя
	}

	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil //nolint:nilnil // Отсутствие пользователя не является ошибкой
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}

	view := user.View()
	return &view, nil
}

// ListUsers возвращает представления всех пользователей.
func (s *userService) ListUsers(ctx context.Context) ([]models.UserView, error) {
	users, err := s.userRepo.ListUsersByCreatedAtDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}

	views := make([]models.UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}
	return views, nil
}

// describeValidation перечисляет поля, не прошедшие валидацию.
func describeValidation(err error) string {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(vErrs))
	for _, fe := range vErrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Sprintf("обязательные поля не заполнены: %v", fields)
}

// Кастомные ошибки сервиса.
var (
	ErrInvalidPayload     = errors.New("некорректные данные запроса")
	ErrUserExists         = errors.New("пользователь уже существует")
	ErrInvalidCredentials = errors.New("неверный email или пароль")
)
