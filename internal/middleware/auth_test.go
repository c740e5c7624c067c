package middleware_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maynagashev/userservice/internal/middleware"
	"github.com/maynagashev/userservice/internal/models"
	"github.com/maynagashev/userservice/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGetUserIDFromContext(t *testing.T) {
	tests := []struct {
		name       string
		ctx        context.Context
		expectedID int64
		expectedOK bool
	}{
		{
			name:       "Контекст с UserID",
			ctx:        context.WithValue(context.Background(), middleware.UserIDKey, int64(123)),
			expectedID: 123,
			expectedOK: true,
		},
		{
			name:       "Пустой контекст",
			ctx:        context.Background(),
			expectedID: 0,
			expectedOK: false,
		},
		{
			name:       "Контекст с UserID неверного типа",
			ctx:        context.WithValue(context.Background(), middleware.UserIDKey, "not-an-int64"),
			expectedID: 0,
			expectedOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, ok := middleware.GetUserIDFromContext(tt.ctx)
			assert.Equal(t, tt.expectedID, userID)
			assert.Equal(t, tt.expectedOK, ok)
		})
	}
}

// issueToken выпускает токен с заданным моментом выпуска.
func issueToken(t *testing.T, userID int64, secret string, issuedAt time.Time) string {
	t.Helper()
	tokens := services.NewTokenService(secret, time.Minute,
		services.WithClock(func() time.Time { return issuedAt }))
	token, err := tokens.Issue(userID)
	require.NoError(t, err, "Ошибка генерации тестового токена")
	return token
}

func TestAuthenticator(t *testing.T) {
	// Обработчик, который будет вызван после middleware
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		assert.True(t, ok, "UserID должен быть в контексте")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK for user %d", userID)
	})

	handler := middleware.Authenticator(services.NewTokenService(testSecret, time.Minute))(nextHandler)
	now := time.Now()

	tests := []struct {
		name            string
		header          string
		expectedStatus  int
		expectedBody    string
		expectedMessage string
	}{
		{
			name:           "Успешная аутентификация",
			header:         "Bearer " + issueToken(t, 123, testSecret, now),
			expectedStatus: http.StatusOK,
			expectedBody:   "OK for user 123",
		},
		{
			name:            "Нет заголовка Authorization",
			header:          "",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: middleware.MsgMissingToken,
		},
		{
			name:            "Неверный формат заголовка (нет Bearer)",
			header:          issueToken(t, 456, testSecret, now),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: middleware.MsgMalformedToken,
		},
		{
			name:            "Неверный формат заголовка (лишнее слово)",
			header:          "Bearer extra " + issueToken(t, 789, testSecret, now),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: middleware.MsgMalformedToken,
		},
		{
			name:            "Схема в нижнем регистре",
			header:          "bearer " + issueToken(t, 789, testSecret, now),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: middleware.MsgMalformedToken,
		},
		{
			name:            "Невалидный токен (неверный секрет)",
			header:          "Bearer " + issueToken(t, 111, "wrong-secret-key", now),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: middleware.MsgInvalidToken,
		},
		{
			name:            "Истекший токен",
			header:          "Bearer " + issueToken(t, 222, testSecret, now.Add(-time.Hour)),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: middleware.MsgExpiredToken,
		},
		{
			name:            "Невалидный токен (пустой)",
			header:          "Bearer ",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: middleware.MsgMalformedToken,
		},
		{
			name:            "Невалидный токен (мусор)",
			header:          "Bearer garbage",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: middleware.MsgInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedBody != "" {
				assert.Equal(t, tt.expectedBody, rr.Body.String())
				return
			}

			var resp models.Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, models.StatusFail, resp.Status)
			assert.Equal(t, tt.expectedMessage, resp.Message)
		})
	}
}
