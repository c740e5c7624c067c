package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/maynagashev/userservice/internal/models"
	"github.com/maynagashev/userservice/internal/response"
)

//go:embed templates/*.html
var templatesFS embed.FS

var functions = template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006, 15:04")
	},
}

var usersTemplate = template.Must(
	template.New("users.html").Funcs(functions).ParseFS(templatesFS, "templates/users.html"),
)

type usersPage struct {
	Users []models.UserView
}

// renderUsers рендерит HTML-список пользователей.
func renderUsers(w http.ResponseWriter, users []models.UserView) {
	// Рендерим во временный буфер
	buf := new(bytes.Buffer)
	if err := usersTemplate.Execute(buf, usersPage{Users: users}); err != nil {
		log.Printf("[UserHandler] Ошибка рендеринга шаблона: %v", err)
		response.InternalError(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[UserHandler] Ошибка отправки HTML: %v", err)
	}
}
