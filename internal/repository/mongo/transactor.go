package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/foodies/foodies-api/internal/repository/ports"
)

// Transactor wraps fn in a multi-document transaction. Transactions need a
// replica set or sharded cluster; with enabled=false fn runs directly and
// Atomic reports false so callers compensate.
type Transactor struct {
	client  *mongo.Client
	enabled bool
}

func NewTransactor(client *mongo.Client, enabled bool) *Transactor {
	return &Transactor{client: client, enabled: enabled}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (t *Transactor) Atomic() bool {
	return t.enabled
}

var _ ports.Transactor = (*Transactor)(nil)
