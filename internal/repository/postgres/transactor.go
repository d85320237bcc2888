package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/foodies/foodies-api/internal/repository/ports"
)

type txKey struct{}

// Transactor begins a transaction and hands it to repositories through the
// context. Nested calls join the outer transaction.
type Transactor struct {
	db *sqlx.DB
}

func NewTransactor(db *sqlx.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(context.WithValue(ctx, txKey{}, tx))
}

func (t *Transactor) Atomic() bool {
	return true
}

// conn returns the transaction bound to ctx, falling back to db.
func conn(ctx context.Context, db *sqlx.DB) executor {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

var _ ports.Transactor = (*Transactor)(nil)
