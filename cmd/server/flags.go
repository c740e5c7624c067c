package main

import (
	"flag"
	"fmt"

	"github.com/maynagashev/userservice/internal/config"
)

// serverFlags хранит значения флагов командной строки до слияния с окружением.
type serverFlags struct {
	port           string
	certFile       string
	keyFile        string
	databaseDSN    string
	databaseDriver string
	profile        string
	migrate        bool
}

// parseFlags разбирает флаги и переменные окружения, возвращает конфигурацию или ошибку.
// Явно заданные флаги имеют приоритет над переменными окружения.
func parseFlags(args []string, lookup config.LookupFunc) (*config.Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	f := &serverFlags{}

	fs.StringVar(&f.port, "port", "",
		fmt.Sprintf("Порт HTTP-сервера (env: %s, default: %s)", config.EnvServerPort, config.DefaultServerPort))
	fs.StringVar(&f.certFile, "cert-file", "",
		fmt.Sprintf("Путь к файлу TLS-сертификата (env: %s)", config.EnvTLSCertFile))
	fs.StringVar(&f.keyFile, "key-file", "",
		fmt.Sprintf("Путь к файлу TLS-ключа (env: %s)", config.EnvTLSKeyFile))
	fs.StringVar(&f.databaseDSN, "database-dsn", "",
		fmt.Sprintf("Строка подключения к базе данных (env: %s)", config.EnvDatabaseURL))
	fs.StringVar(&f.databaseDriver, "database-driver", "",
		fmt.Sprintf("Драйвер БД: postgres или sqlite3 (env: %s)", config.EnvDatabaseDriver))
	fs.StringVar(&f.profile, "profile", "",
		fmt.Sprintf("Профиль: development, testing, production (env: %s)", config.EnvProfile))
	fs.BoolVar(&f.migrate, "migrate", true, "Применить миграции при старте")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("ошибка разбора флагов: %w", err)
	}

	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	// Профиль из флага выбирается до чтения окружения, от него зависят значения по умолчанию
	if set["profile"] {
		lookup = withProfile(lookup, f.profile)
	}

	cfg, err := config.Load(lookup)
	if err != nil {
		return nil, err
	}

	if set["port"] {
		cfg.Port = f.port
	}
	if set["cert-file"] {
		cfg.CertFile = f.certFile
	}
	if set["key-file"] {
		cfg.KeyFile = f.keyFile
	}
	if set["database-dsn"] {
		cfg.DatabaseDSN = f.databaseDSN
	}
	if set["database-driver"] {
		cfg.DatabaseDriver = f.databaseDriver
	}
	cfg.Migrate = f.migrate

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация: %w", err)
	}
	return cfg, nil
}

func withProfile(lookup config.LookupFunc, profile string) config.LookupFunc {
	return func(key string) (string, bool) {
		if key == config.EnvProfile {
			return profile, true
		}
		return lookup(key)
	}
}
