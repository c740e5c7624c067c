// Package config собирает настройки сервиса из профиля и переменных окружения.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/maynagashev/userservice/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Имена профилей.
const (
	ProfileDevelopment = "development"
	ProfileTesting     = "testing"
	ProfileProduction  = "production"
)

// Переменные окружения.
const (
	EnvProfile         = "APP_SETTINGS"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvTestDatabaseURL = "TEST_DATABASE_URL"
	EnvDatabaseDriver  = "DATABASE_DRIVER"
	EnvSecretKey       = "SECRET_KEY" //nolint:gosec // Имя переменной окружения, а не секрет
	EnvBcryptRounds    = "BCRYPT_LOG_ROUNDS"
	EnvTokenTTLSeconds = "JWT_EXPIRATION_TIME_SECONDS"
	EnvServerPort      = "SERVER_PORT"
	EnvTLSCertFile     = "TLS_CERT_FILE"
	EnvTLSKeyFile      = "TLS_KEY_FILE"
)

// Значения по умолчанию.
const (
	DefaultSecretKey  = "my_precious"
	DefaultServerPort = "5000"
)

// Profile - набор значений по умолчанию для окружения.
type Profile struct {
	Name       string
	Debug      bool
	BcryptCost int
	TokenTTL   time.Duration
}

var profiles = map[string]Profile{
	ProfileDevelopment: {Name: ProfileDevelopment, Debug: true, BcryptCost: 4, TokenTTL: 3600 * time.Second},
	ProfileTesting:     {Name: ProfileTesting, Debug: true, BcryptCost: bcrypt.MinCost, TokenTTL: time.Second},
	ProfileProduction:  {Name: ProfileProduction, Debug: false, BcryptCost: 13, TokenTTL: 3600 * time.Second},
}

// LookupProfile возвращает профиль по имени.
func LookupProfile(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// Config хранит конфигурацию сервера.
type Config struct {
	Profile        string
	Debug          bool
	DatabaseDriver string
	DatabaseDSN    string
	SecretKey      string
	BcryptCost     int
	TokenTTL       time.Duration
	Port           string
	CertFile       string
	KeyFile        string
	Migrate        bool
}

// LookupFunc совпадает по сигнатуре с os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv собирает конфигурацию из переменных окружения процесса.
func FromEnv() (*Config, error) {
	return Load(os.LookupEnv)
}

// Load собирает конфигурацию: сначала профиль, затем переопределения из окружения.
func Load(lookup LookupFunc) (*Config, error) {
	profileName := ProfileDevelopment
	if v, ok := lookup(EnvProfile); ok && v != "" {
		profileName = v
	}
	profile, err := LookupProfile(profileName)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Profile:        profile.Name,
		Debug:          profile.Debug,
		DatabaseDriver: repository.DriverPostgres,
		SecretKey:      DefaultSecretKey,
		BcryptCost:     profile.BcryptCost,
		TokenTTL:       profile.TokenTTL,
		Port:           DefaultServerPort,
		Migrate:        true,
	}

	dsnVar := EnvDatabaseURL
	if profile.Name == ProfileTesting {
		dsnVar = EnvTestDatabaseURL
	}
	setString(lookup, dsnVar, &cfg.DatabaseDSN)
	setString(lookup, EnvDatabaseDriver, &cfg.DatabaseDriver)
	setString(lookup, EnvSecretKey, &cfg.SecretKey)
	setString(lookup, EnvServerPort, &cfg.Port)
	setString(lookup, EnvTLSCertFile, &cfg.CertFile)
	setString(lookup, EnvTLSKeyFile, &cfg.KeyFile)

	if v, ok := lookup(EnvBcryptRounds); ok && v != "" {
		cfg.BcryptCost, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("некорректное значение %s: %w", EnvBcryptRounds, err)
		}
	}
	if v, ok := lookup(EnvTokenTTLSeconds); ok && v != "" {
		seconds, parseErr := strconv.Atoi(v)
		if parseErr != nil {
			return nil, fmt.Errorf("некорректное значение %s: %w", EnvTokenTTLSeconds, parseErr)
		}
		cfg.TokenTTL = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}

// TLSEnabled сообщает, заданы ли и сертификат, и ключ.
func (c *Config) TLSEnabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// Validate проверяет обязательные параметры.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseDriver != repository.DriverPostgres && c.DatabaseDriver != repository.DriverSQLite {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, ErrMissingDSN)
	}
	if c.SecretKey == "" {
		errs = append(errs, ErrMissingSecret)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidBcryptCost, c.BcryptCost))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, ErrInvalidTokenTTL)
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		errs = append(errs, ErrIncompleteTLS)
	}
	return errors.Join(errs...)
}

func setString(lookup LookupFunc, key string, dst *string) {
	if v, ok := lookup(key); ok && v != "" {
		*dst = v
	}
}

// Ошибки конфигурации.
var (
	ErrUnknownProfile    = errors.New("неизвестный профиль конфигурации")
	ErrUnsupportedDriver = errors.New("неподдерживаемый драйвер БД")
	ErrMissingDSN        = errors.New("не указана строка подключения к БД")
	ErrMissingSecret     = errors.New("не указан секретный ключ")
	ErrInvalidBcryptCost = errors.New("сложность bcrypt вне допустимого диапазона")
	ErrInvalidTokenTTL   = errors.New("время жизни токена должно быть положительным")
	ErrIncompleteTLS     = errors.New("для TLS нужны и сертификат, и ключ")
)
