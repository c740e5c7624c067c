package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL - время жизни токена по умолчанию.
const DefaultTokenTTL = 3600 * time.Second

const (
	tokenIssuer  = "userservice"
	bearerScheme = "Bearer"
)

// TokenService выпускает и проверяет подписанные токены доступа.
type TokenService interface {
	// Issue создает подписанный токен для пользователя.
	Issue(userID int64) (string, error)
	// Decode проверяет токен и возвращает ID пользователя из subject.
	Decode(token string) (int64, error)
}

// TokenOption настраивает jwtTokenService.
type TokenOption func(*jwtTokenService)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) TokenOption {
	return func(s *jwtTokenService) {
		s.now = now
	}
}

// Убедимся, что jwtTokenService удовлетворяет интерфейсу TokenService.
var _ TokenService = (*jwtTokenService)(nil)

type jwtTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService создает сервис токенов с секретом подписи и временем жизни.
func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) TokenService {
	s := &jwtTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue создает и подписывает HS256 токен для пользователя.
func (s *jwtTokenService) Issue(userID int64) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("%w: пустой секретный ключ", ErrTokenEncode)
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		Issuer:    tokenIssuer,
		ID:        uuid.NewString(), // Токены, выпущенные в одну секунду, различаются
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		log.Printf("[TokenService] Ошибка подписи токена для пользователя %d: %v", userID, err)
		return "", fmt.Errorf("%w: %w", ErrTokenEncode, err)
	}
	return signed, nil
}

// Decode разбирает токен, проверяет подпись и срок действия.
func (s *jwtTokenService) Decode(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(_ *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		log.Printf("[TokenService] Невалидный токен: %v", err)
		return 0, ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		log.Printf("[TokenService] Некорректный subject токена: %q", claims.Subject)
		return 0, ErrTokenInvalid
	}
	return userID, nil
}

// ExtractBearerToken извлекает токен из заголовка вида "Bearer <token>".
func ExtractBearerToken(headerValue string) (string, error) {
	parts := strings.Fields(headerValue)
	if len(parts) != 2 || parts[0] != bearerScheme {
		return "", ErrMalformedHeader
	}
	return parts[1], nil
}

// Ошибки токенов.
var (
	ErrTokenEncode     = errors.New("не удалось сформировать токен")
	ErrTokenExpired    = errors.New("срок действия токена истек")
	ErrTokenInvalid    = errors.New("невалидный токен")
	ErrMalformedHeader = errors.New("неверный формат заголовка Authorization")
)
