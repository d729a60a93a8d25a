// Package dbx holds the small database/sql helpers shared by the client's
// SQLite repositories.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DBTX is the subset of database/sql the repositories use. Both *sql.DB and
// *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Handle is a DBTX that knows whether it is inside a transaction. A unit of
// work started from a transactional Handle joins the outer transaction
// instead of opening a second one, which SQLite would block on.
type Handle struct {
	DBTX
	root *sql.DB
}

// NewHandle wraps the pool. The zero Handle is not usable.
func NewHandle(db *sql.DB) Handle {
	return Handle{DBTX: db, root: db}
}

// InTx reports whether h runs inside a transaction.
func (h Handle) InTx() bool { return h.root == nil }

// Update runs fn in a transaction, or directly on h when h already is one.
func (h Handle) Update(ctx context.Context, fn func(ctx context.Context, tx Handle) error) error {
	if h.InTx() {
		return fn(ctx, h)
	}
	return WithTx(ctx, h.root, nil, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, Handle{DBTX: tx})
	})
}

// WithTx begins a transaction, runs fn with it, then commits when fn
// succeeds and rolls back otherwise. A panic in fn rolls back and is
// re-raised. A failed rollback is joined to fn's error.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "DELETE FROM metadata WHERE key = ?", "session")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("commit: %w", cErr)
		}
	}()

	return fn(ctx, tx)
}
