package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/maynagashev/userservice/internal/models"
)

// Типизированные ошибки ответа сервера.
var (
	// ErrAuthorization сигнализирует об ошибке авторизации (401).
	ErrAuthorization = errors.New("ошибка авторизации")
	// ErrNotFound - ресурс не найден или неверные учетные данные (404).
	ErrNotFound = errors.New("не найдено")
	// ErrConflict - пользователь уже существует (409).
	ErrConflict = errors.New("конфликт")
	// ErrBadRequest - сервер отклонил данные запроса (400).
	ErrBadRequest = errors.New("некорректный запрос")
	// ErrNoToken - метод требует токен, а он не установлен.
	ErrNoToken = errors.New("токен аутентификации отсутствует")
)

const defaultTimeout = 10 * time.Second

// Client определяет интерфейс для взаимодействия с API сервиса пользователей.
type Client interface {
	// Ping проверяет доступность сервера.
	Ping(ctx context.Context) error
	// Register регистрирует нового пользователя и сохраняет выданный токен.
	Register(ctx context.Context, username, email, password string) (*models.UserView, error)
	// Login аутентифицирует пользователя и возвращает токен.
	Login(ctx context.Context, email, password string) (string, error)
	// Logout проверяет текущий токен на сервере и забывает его.
	Logout(ctx context.Context) error
	// GetUser получает пользователя по ID.
	GetUser(ctx context.Context, id int64) (*models.UserView, error)
	// ListUsers получает список пользователей, сначала новые.
	ListUsers(ctx context.Context) ([]models.UserView, error)
	// SetAuthToken устанавливает токен для аутентифицированных запросов.
	SetAuthToken(token string)
	// AuthToken возвращает текущий токен.
	AuthToken() string
}

// httpClient реализует интерфейс Client для взаимодействия с сервером по HTTP.
type httpClient struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.RWMutex
	authToken string
}

// NewHTTPClient создает новый экземпляр API клиента.
func NewHTTPClient(baseURL string) Client {
	return NewHTTPClientWith(baseURL, &http.Client{Timeout: defaultTimeout})
}

// NewHTTPClientWith создает API клиент поверх переданного http.Client.
func NewHTTPClientWith(baseURL string, hc *http.Client) Client {
	return &httpClient{baseURL: baseURL, httpClient: hc}
}

func (c *httpClient) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authToken = token
}

func (c *httpClient) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken
}

// Ping отправляет GET /ping.
func (c *httpClient) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/ping", nil, false, http.StatusOK)
	return err
}

// Register отправляет запрос на регистрацию на сервер.
func (c *httpClient) Register(ctx context.Context, username, email, password string) (*models.UserView, error) {
	body := models.CreateUserRequest{Username: username, Email: email, Password: password}
	envelope, err := c.do(ctx, http.MethodPost, "/auth/register", body, false, http.StatusCreated)
	if err != nil {
		return nil, fmt.Errorf("ошибка регистрации: %w", err)
	}

	var user models.UserView
	if err = decodeData(envelope, &user); err != nil {
		return nil, err
	}
	if envelope.Token == "" {
		return nil, errors.New("сервер вернул пустой токен")
	}
	c.SetAuthToken(envelope.Token)
	return &user, nil
}

// Login отправляет запрос на вход на сервер и сохраняет токен.
func (c *httpClient) Login(ctx context.Context, email, password string) (string, error) {
	body := models.LoginRequest{Email: email, Password: password}
	envelope, err := c.do(ctx, http.MethodPost, "/auth/login", body, false, http.StatusOK)
	if err != nil {
		return "", fmt.Errorf("ошибка входа: %w", err)
	}
	if envelope.Token == "" {
		return "", errors.New("сервер вернул пустой токен")
	}

	// Сохраняем токен в клиенте для последующих запросов
	c.SetAuthToken(envelope.Token)
	return envelope.Token, nil
}

// Logout отправляет GET /auth/logout с текущим токеном.
func (c *httpClient) Logout(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodGet, "/auth/logout", nil, true, http.StatusOK); err != nil {
		return fmt.Errorf("ошибка выхода: %w", err)
	}
	c.SetAuthToken("")
	return nil
}

// GetUser отправляет GET /users/{id}.
func (c *httpClient) GetUser(ctx context.Context, id int64) (*models.UserView, error) {
	envelope, err := c.do(ctx, http.MethodGet, "/users/"+strconv.FormatInt(id, 10), nil, false, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователя %d: %w", id, err)
	}

	var user models.UserView
	if err = decodeData(envelope, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers отправляет GET /users и возвращает JSON-список.
func (c *httpClient) ListUsers(ctx context.Context) ([]models.UserView, error) {
	envelope, err := c.do(ctx, http.MethodGet, "/users", nil, false, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}

	var list models.UsersList
	if err = decodeData(envelope, &list); err != nil {
		return nil, err
	}
	return list.Users, nil
}

// envelope - конверт ответа с отложенным разбором data.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
}

// do выполняет запрос и разбирает конверт ответа.
func (c *httpClient) do(
	ctx context.Context, method, path string, body any, withAuth bool, expectedStatus int,
) (*envelope, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("ошибка формирования URL %s: %w", path, err)
	}

	var reader io.Reader
	if body != nil {
		jsonData, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return nil, fmt.Errorf("ошибка кодирования тела запроса: %w", marshalErr)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withAuth {
		token := c.AuthToken()
		if token == "" {
			return nil, ErrNoToken
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode != expectedStatus {
		return nil, statusError(resp.StatusCode, env.Message)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("ошибка декодирования ответа: %w", decodeErr)
	}
	return &env, nil
}

// statusError превращает код ответа в типизированную ошибку.
func statusError(status int, message string) error {
	var base error
	switch status {
	case http.StatusBadRequest:
		base = ErrBadRequest
	case http.StatusUnauthorized:
		base = ErrAuthorization
	case http.StatusNotFound:
		base = ErrNotFound
	case http.StatusConflict:
		base = ErrConflict
	default:
		if message == "" {
			return fmt.Errorf("неожиданный статус ответа %d", status)
		}
		return fmt.Errorf("неожиданный статус ответа %d: %s", status, message)
	}
	if message == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, message)
}

func decodeData(env *envelope, dst any) error {
	if len(env.Data) == 0 {
		return errors.New("в ответе отсутствует поле data")
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("ошибка декодирования поля data: %w", err)
	}
	return nil
}
