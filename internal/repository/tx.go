package repository

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
)

// withTx открывает транзакцию, выполняет fn и фиксирует ее.
// При ошибке или панике транзакция откатывается, паника пробрасывается дальше.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("[Repo] Ошибка отката транзакции: %v", rbErr)
			}
			return
		}
		err = tx.Commit()
	}()

	err = fn(tx)
	return err
}
