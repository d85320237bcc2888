package ports

import "context"

// Transactor runs fn inside a write scope spanning every repository call made
// with the context it passes to fn.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// Atomic reports whether a failed fn leaves no partial writes behind.
	// Callers compensate manually when it returns false.
	Atomic() bool
}
