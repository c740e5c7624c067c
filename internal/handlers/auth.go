package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/maynagashev/userservice/internal/middleware"
	"github.com/maynagashev/userservice/internal/models"
	"github.com/maynagashev/userservice/internal/response"
	"github.com/maynagashev/userservice/internal/services"
)

// Сообщения ответов аутентификации.
const (
	MsgLoggedIn           = "Successfully logged in."
	MsgLoggedOut          = "Successfully logged out."
	MsgInvalidCredentials = "Invalid username or password."
	MsgTokenEncode        = "Could not encode token."
)

// AuthHandler обрабатывает HTTP-запросы, связанные с аутентификацией.
type AuthHandler struct {
	users  services.UserService
	tokens services.TokenService
}

// NewAuthHandler создает новый экземпляр AuthHandler.
func NewAuthHandler(us services.UserService, ts services.TokenService) *AuthHandler {
	return &AuthHandler{users: us, tokens: ts}
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		log.Printf("[AuthHandler] Ошибка декодирования запроса регистрации: %v", err)
		response.Error(w, http.StatusBadRequest, MsgInvalidPayload)
		return
	}

	log.Printf("[AuthHandler] Попытка регистрации пользователя: %s", req.Username)

	user, err := h.users.Create(r.Context(), services.CreateUserParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeCreateError(w, err, response.Error)
		return
	}

	token, ok := h.issueToken(w, user.ID)
	if !ok {
		return
	}

	response.Success(w, http.StatusCreated, models.Response{Data: user.View(), Token: token})
	log.Printf("[AuthHandler] Успешная регистрация для: %s", user.Username)
}

// Login обрабатывает запрос на вход пользователя.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		log.Printf("[AuthHandler] Ошибка декодирования запроса входа: %v", err)
		response.Fail(w, http.StatusBadRequest, MsgInvalidPayload)
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPayload):
			response.Fail(w, http.StatusBadRequest, MsgInvalidPayload)
		case errors.Is(err, services.ErrInvalidCredentials):
			response.Fail(w, http.StatusNotFound, MsgInvalidCredentials)
		default:
			log.Printf("[AuthHandler] Внутренняя ошибка при входе: %v", err)
			response.InternalError(w)
		}
		return
	}

	token, ok := h.issueToken(w, user.ID)
	if !ok {
		return
	}

	response.Success(w, http.StatusOK, models.Response{Message: MsgLoggedIn, Token: token})
	log.Printf("[AuthHandler] Успешный вход для: %s", user.Username)
}

// Logout подтверждает выход. Токен проверяется middleware, состояния на сервере нет.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		log.Printf("[AuthHandler] Не удалось получить userID из контекста")
		response.InternalError(w)
		return
	}

	log.Printf("[AuthHandler] Выход пользователя %d", userID)
	response.Success(w, http.StatusOK, models.Response{Message: MsgLoggedOut})
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, userID int64) (string, bool) {
	token, err := h.tokens.Issue(userID)
	if err != nil {
		log.Printf("[AuthHandler] Ошибка выпуска токена для пользователя %d: %v", userID, err)
		response.Error(w, http.StatusInternalServerError, MsgTokenEncode)
		return "", false
	}
	return token, true
}
