package repository

import (
	"context"
	"embed"
	"fmt"
	"log"
	"path"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrationsFS embed.FS

// goose хранит FS и диалект в глобальном состоянии.
var migrateMu sync.Mutex

// Migrate применяет встроенные миграции схемы для указанного драйвера.
func Migrate(ctx context.Context, db *sqlx.DB, driver string) error {
	if driver != DriverPostgres && driver != DriverSQLite {
		return fmt.Errorf("неподдерживаемый драйвер БД для миграций: %q", driver)
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(driver); err != nil {
		return fmt.Errorf("ошибка установки диалекта миграций: %w", err)
	}

	dir := path.Join("migrations", driver)
	if err := goose.UpContext(ctx, db.DB, dir); err != nil {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	log.Printf("[Repo] Миграции (%s) применены", driver)
	return nil
}
