package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maynagashev/userservice/internal/api"
	"github.com/maynagashev/userservice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestHTTPClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		writeJSON(w, http.StatusOK, models.Response{Status: "success", Message: "pong!"})
	}))
	defer server.Close()

	require.NoError(t, api.NewHTTPClient(server.URL).Ping(context.Background()))
}

func TestHTTPClient_Register(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	tests := []struct {
		name          string
		serverHandler http.HandlerFunc
		expectedErr   error
		expectedToken string
	}{
		{
			name: "Успех",
			serverHandler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(http.MethodPost, r.Method)
				assert.Equal("/auth/register", r.URL.Path)
				assert.Equal("application/json", r.Header.Get("Content-Type"))

				var req models.CreateUserRequest
				assert.NoError(json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(models.CreateUserRequest{Username: "test", Email: "test@test.com", Password: "test"}, req)

				writeJSON(w, http.StatusCreated, models.Response{
					Status: "success",
					Data:   models.UserView{ID: 1, Username: "test", Email: "test@test.com"},
					Token:  "issued-token",
				})
			},
			expectedToken: "issued-token",
		},
		{
			name: "Пользователь уже существует (409)",
			serverHandler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusConflict, models.Response{Status: "error", Message: "User already exists."})
			},
			expectedErr: api.ErrConflict,
		},
		{
			name: "Некорректные данные (400)",
			serverHandler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusBadRequest, models.Response{Status: "error", Message: "Invalid payload."})
			},
			expectedErr: api.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(_ *testing.T) {
			server := httptest.NewServer(tt.serverHandler)
			defer server.Close()

			client := api.NewHTTPClient(server.URL)
			user, err := client.Register(context.Background(), "test", "test@test.com", "test")

			if tt.expectedErr != nil {
				require.ErrorIs(err, tt.expectedErr)
				assert.Nil(user)
				assert.Empty(client.AuthToken())
				return
			}
			require.NoError(err)
			assert.Equal("test", user.Username)
			assert.Equal(tt.expectedToken, client.AuthToken())
		})
	}
}

func TestHTTPClient_Login(t *testing.T) {
	t.Run("Успех", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req models.LoginRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test@test.com", req.Email)
			writeJSON(w, http.StatusOK, models.Response{Status: "success", Message: "Successfully logged in.", Token: "tok"})
		}))
		defer server.Close()

		client := api.NewHTTPClient(server.URL)
		token, err := client.Login(context.Background(), "test@test.com", "test")
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
		assert.Equal(t, "tok", client.AuthToken())
	})

	t.Run("Неверные учетные данные (404)", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusNotFound, models.Response{Status: "fail", Message: "Invalid username or password."})
		}))
		defer server.Close()

		_, err := api.NewHTTPClient(server.URL).Login(context.Background(), "test@test.com", "wrong")
		require.ErrorIs(t, err, api.ErrNotFound)
		assert.Contains(t, err.Error(), "Invalid username or password.")
	})

	t.Run("Пустой токен в ответе", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, models.Response{Status: "success"})
		}))
		defer server.Close()

		_, err := api.NewHTTPClient(server.URL).Login(context.Background(), "test@test.com", "test")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "пустой токен")
	})
}

func TestHTTPClient_Logout(t *testing.T) {
	t.Run("Успех", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, models.Response{Status: "success", Message: "Successfully logged out."})
		}))
		defer server.Close()

		client := api.NewHTTPClient(server.URL)
		client.SetAuthToken("tok")
		require.NoError(t, client.Logout(context.Background()))
		assert.Empty(t, client.AuthToken())
	})

	t.Run("Истекший токен (401)", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusUnauthorized, models.Response{Status: "fail", Message: "Expired token, please login again."})
		}))
		defer server.Close()

		client := api.NewHTTPClient(server.URL)
		client.SetAuthToken("tok")
		err := client.Logout(context.Background())
		require.ErrorIs(t, err, api.ErrAuthorization)
		assert.Equal(t, "tok", client.AuthToken())
	})

	t.Run("Без токена авторизации", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			assert.Fail(t, "Сервер не должен был получить запрос без токена")
		}))
		defer server.Close()

		err := api.NewHTTPClient(server.URL).Logout(context.Background())
		require.ErrorIs(t, err, api.ErrNoToken)
	})
}

func TestHTTPClient_GetUser(t *testing.T) {
	t.Run("Успех", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/42", r.URL.Path)
			writeJSON(w, http.StatusOK, models.Response{Status: "success", Data: models.UserView{ID: 42, Username: "u"}})
		}))
		defer server.Close()

		user, err := api.NewHTTPClient(server.URL).GetUser(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, int64(42), user.ID)
		assert.Equal(t, "u", user.Username)
	})

	t.Run("Не найден (404)", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusNotFound, models.Response{Status: "fail", Message: "User not found."})
		}))
		defer server.Close()

		user, err := api.NewHTTPClient(server.URL).GetUser(context.Background(), 999999)
		require.ErrorIs(t, err, api.ErrNotFound)
		assert.Nil(t, user)
	})

	t.Run("Ответ без data", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, models.Response{Status: "success"})
		}))
		defer server.Close()

		_, err := api.NewHTTPClient(server.URL).GetUser(context.Background(), 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "data")
	})
}

func TestHTTPClient_ListUsers(t *testing.T) {
	t.Run("Успех", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			writeJSON(w, http.StatusOK, models.Response{Status: "success", Data: models.UsersList{
				Users: []models.UserView{{ID: 2, Username: "second"}, {ID: 1, Username: "first"}},
			}})
		}))
		defer server.Close()

		users, err := api.NewHTTPClient(server.URL).ListUsers(context.Background())
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "second", users[0].Username)
	})

	t.Run("Ошибка сервера (500)", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusInternalServerError, models.Response{Status: "error", Message: "Internal server error."})
		}))
		defer server.Close()

		_, err := api.NewHTTPClient(server.URL).ListUsers(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "статус ответа 500")
	})

	t.Run("Сервер недоступен", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := api.NewHTTPClient(url).ListUsers(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка выполнения запроса")
	})
}
