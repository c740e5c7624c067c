package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/maynagashev/userservice/internal/models"
)

// Коды ошибок PostgreSQL.
const (
	pgUniqueViolationCode = "23505"
)

// Запросы пишутся с плейсхолдерами `?` и приводятся к диалекту драйвера через Rebind.
const (
	createUserQuery = `INSERT INTO users (username, email, password, active, created_at)
	                   VALUES (?, ?, ?, ?, ?) RETURNING id`
	selectUserColumns   = `SELECT id, username, email, password, active, created_at FROM users`
	getUserByEmailQuery = selectUserColumns + ` WHERE email = ?`
	getUserByIDQuery    = selectUserColumns + ` WHERE id = ?`
	listUsersQuery      = selectUserColumns + ` ORDER BY created_at DESC, id DESC`
)

// UserRepository определяет методы для работы с данными пользователей в хранилище.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsersByCreatedAtDesc(ctx context.Context) ([]models.User, error)
}

// sqlUserRepository реализует UserRepository поверх sqlx (PostgreSQL или SQLite).
type sqlUserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создает новый экземпляр репозитория пользователей.
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &sqlUserRepository{db: db}
}

// CreateUser создает нового пользователя в отдельной транзакции.
// Возвращает ID созданного пользователя или ErrUserExists при нарушении уникальности.
func (r *sqlUserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	var userID int64

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return tx.QueryRowxContext(ctx, r.db.Rebind(createUserQuery),
			user.Username, user.Email, user.PasswordHash, user.Active, user.CreatedAt,
		).Scan(&userID)
	})
	if err != nil {
		if isUniqueViolation(err) {
			log.Printf("[Repo] Ошибка создания пользователя: '%s' или '%s' уже заняты", user.Username, user.Email)
			return 0, ErrUserExists
		}
		log.Printf("[Repo] Непредвиденная ошибка при создании пользователя '%s': %v", user.Username, err)
		return 0, fmt.Errorf("ошибка выполнения запроса на создание пользователя: %w", err)
	}

	log.Printf("[Repo] Пользователь '%s' успешно создан с ID %d", user.Username, userID)
	return userID, nil
}

// GetUserByEmail находит пользователя по email.
func (r *sqlUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	err := r.db.GetContext(ctx, &user, r.db.Rebind(getUserByEmailQuery), email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[Repo] Пользователь с email '%s' не найден", email)
			return nil, ErrUserNotFound
		}
		log.Printf("[Repo] Ошибка при поиске пользователя по email '%s': %v", email, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователя: %w", err)
	}

	return &user, nil
}

// GetUserByID находит пользователя по идентификатору.
func (r *sqlUserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User

	err := r.db.GetContext(ctx, &user, r.db.Rebind(getUserByIDQuery), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[Repo] Пользователь с ID %d не найден", id)
			return nil, ErrUserNotFound
		}
		log.Printf("[Repo] Ошибка при поиске пользователя с ID %d: %v", id, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователя: %w", err)
	}

	return &user, nil
}

// ListUsersByCreatedAtDesc возвращает всех пользователей, сначала новые.
func (r *sqlUserRepository) ListUsersByCreatedAtDesc(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)

	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(listUsersQuery)); err != nil {
		log.Printf("[Repo] Ошибка при получении списка пользователей: %v", err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение списка пользователей: %w", err)
	}

	return users, nil
}

// isUniqueViolation распознает нарушение уникальности для обоих поддерживаемых драйверов.
func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// Кастомные ошибки репозитория.
var (
	ErrUserNotFound = errors.New("пользователь не найден")
	ErrUserExists   = errors.New("имя пользователя или email уже заняты")
)
