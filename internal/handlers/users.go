package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/maynagashev/userservice/internal/models"
	"github.com/maynagashev/userservice/internal/response"
	"github.com/maynagashev/userservice/internal/services"
)

// Сообщения ответов.
const (
	MsgPong           = "pong!"
	MsgInvalidPayload = "Invalid payload."
	MsgUserExists     = "User already exists."
	MsgUserNotFound   = "User not found."
)

// maxBodyBytes ограничивает размер тела запроса.
const maxBodyBytes = 1 << 20

// UserHandler обрабатывает HTTP-запросы к ресурсу пользователей.
type UserHandler struct {
	users services.UserService
}

// NewUserHandler создает новый экземпляр UserHandler.
func NewUserHandler(us services.UserService) *UserHandler {
	return &UserHandler{users: us}
}

// Ping отвечает на проверку доступности.
func (h *UserHandler) Ping(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, http.StatusOK, models.Response{Message: MsgPong})
}

// Create обрабатывает POST /users с JSON или с данными HTML-формы.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if isFormRequest(r) {
		h.createFromForm(w, r)
		return
	}

	var req models.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		log.Printf("[UserHandler:Create] Ошибка декодирования запроса: %v", err)
		response.Fail(w, http.StatusBadRequest, MsgInvalidPayload)
		return
	}

	user, err := h.users.Create(r.Context(), services.CreateUserParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeCreateError(w, err, response.Fail)
		return
	}

	response.Success(w, http.StatusCreated, models.Response{Data: user.View()})
}

// createFromForm создает пользователя из формы и отдает HTML-список.
func (h *UserHandler) createFromForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := parseForm(r); err != nil {
		log.Printf("[UserHandler:Create] Ошибка разбора формы: %v", err)
		response.Fail(w, http.StatusBadRequest, MsgInvalidPayload)
		return
	}

	_, err := h.users.Create(r.Context(), services.CreateUserParams{
		Username: r.PostForm.Get("username"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	})
	if err != nil {
		writeCreateError(w, err, response.Fail)
		return
	}

	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		log.Printf("[UserHandler:Create] Ошибка получения списка пользователей: %v", err)
		response.InternalError(w)
		return
	}
	renderUsers(w, users)
}

// Get обрабатывает GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")

	user, err := h.users.GetUser(r.Context(), rawID)
	if err != nil {
		log.Printf("[UserHandler:Get] Внутренняя ошибка при получении пользователя %q: %v", rawID, err)
		response.InternalError(w)
		return
	}
	if user == nil {
		response.Fail(w, http.StatusNotFound, MsgUserNotFound)
		return
	}

	response.Success(w, http.StatusOK, models.Response{Data: user})
}

// List обрабатывает GET /users, отдавая JSON или HTML по заголовку Accept.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		log.Printf("[UserHandler:List] Внутренняя ошибка при получении списка: %v", err)
		response.InternalError(w)
		return
	}

	if clientPrefersHTML(r.Header.Get("Accept")) {
		renderUsers(w, users)
		return
	}
	response.Success(w, http.StatusOK, models.Response{Data: models.UsersList{Users: users}})
}

// writeCreateError отображает ошибку создания пользователя в ответ.
// write задает статус конверта ("fail" или "error").
func writeCreateError(w http.ResponseWriter, err error, write func(http.ResponseWriter, int, string)) {
	switch {
	case errors.Is(err, services.ErrInvalidPayload):
		log.Printf("[UserHandler] Некорректные данные: %v", err)
		write(w, http.StatusBadRequest, MsgInvalidPayload)
	case errors.Is(err, services.ErrUserExists):
		write(w, http.StatusConflict, MsgUserExists)
	default:
		log.Printf("[UserHandler] Внутренняя ошибка при создании пользователя: %v", err)
		response.InternalError(w)
	}
}

const (
	mimeForm      = "application/x-www-form-urlencoded"
	mimeMultipart = "multipart/form-data"
)

// isFormRequest проверяет, отправлены ли данные HTML-формой.
func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == mimeForm || mediaType == mimeMultipart
}

func parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == mimeMultipart {
		return r.ParseMultipartForm(maxBodyBytes)
	}
	return r.ParseForm()
}

// decodeJSON читает тело запроса в dst, запрещая неизвестные поля.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("неверный JSON: %w", err)
	}
	return nil
}
