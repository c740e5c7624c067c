package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/maynagashev/userservice/internal/response"
	"github.com/maynagashev/userservice/internal/services"
)

// Тип для ключа контекста.
type contextKey string

// UserIDKey - ключ для хранения ID пользователя в контексте.
const UserIDKey contextKey = "userID"

// Сообщения об ошибках аутентификации.
const (
	MsgMissingToken   = "Provide a valid auth token."
	MsgMalformedToken = "Bearer token malformed."
	MsgExpiredToken   = "Expired token, please login again."
	MsgInvalidToken   = "Invalid token."
)

// Authenticator проверяет токен из заголовка Authorization
// и кладет ID пользователя в контекст запроса.
func Authenticator(tokens services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Println("[AuthMiddleware] Заголовок Authorization отсутствует")
				response.Fail(w, http.StatusUnauthorized, MsgMissingToken)
				return
			}

			tokenString, err := services.ExtractBearerToken(authHeader)
			if err != nil {
				log.Printf("[AuthMiddleware] Неверный формат заголовка Authorization")
				response.Fail(w, http.StatusUnauthorized, MsgMalformedToken)
				return
			}

			userID, err := tokens.Decode(tokenString)
			switch {
			case errors.Is(err, services.ErrTokenExpired):
				log.Println("[AuthMiddleware] Срок действия токена истек")
				response.Fail(w, http.StatusUnauthorized, MsgExpiredToken)
				return
			case err != nil:
				log.Printf("[AuthMiddleware] Ошибка валидации токена: %v", err)
				response.Fail(w, http.StatusUnauthorized, MsgInvalidToken)
				return
			}

			log.Printf("[AuthMiddleware] Пользователь %d успешно аутентифицирован", userID)
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext извлекает UserID из контекста запроса.
// Возвращает ID пользователя и true, если ID найден, иначе 0 и false.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
