// Package response формирует JSON-конверты ответов сервиса.
package response

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/maynagashev/userservice/internal/models"
)

// MsgInternalError - сообщение для непредвиденных ошибок.
const MsgInternalError = "Internal server error."

// JSON записывает конверт с указанным статусом HTTP.
func JSON(w http.ResponseWriter, status int, body models.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Статус уже отправлен клиенту, остается только залогировать
		log.Printf("[Response] Ошибка кодирования ответа: %v", err)
	}
}

// Success отвечает конвертом со статусом "success".
func Success(w http.ResponseWriter, status int, body models.Response) {
	body.Status = models.StatusSuccess
	JSON(w, status, body)
}

// Fail отвечает конвертом со статусом "fail" и сообщением.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, models.Response{Status: models.StatusFail, Message: message})
}

// Error отвечает конвертом со статусом "error" и сообщением.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, models.Response{Status: models.StatusError, Message: message})
}

// InternalError отвечает 500 с общим сообщением.
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, MsgInternalError)
}
