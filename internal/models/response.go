package models

// Статусы конверта ответа.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Response - единый конверт JSON-ответа сервиса.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
}

// UsersList - содержимое поля data для списка пользователей.
type UsersList struct {
	Users []UserView `json:"users"`
}
