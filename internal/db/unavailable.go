package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNoDatabase = errors.New("database unavailable")

// Unavailable stands in for the pool when Postgres could not be reached at
// startup. Every call fails with ErrNoDatabase.
type Unavailable struct{}

func (Unavailable) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, ErrNoDatabase
}

func (Unavailable) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, ErrNoDatabase
}

func (Unavailable) QueryRow(context.Context, string, ...any) pgx.Row {
	return errRow{}
}

func (Unavailable) Begin(context.Context) (pgx.Tx, error) {
	return nil, ErrNoDatabase
}

type errRow struct{}

func (errRow) Scan(...any) error { return ErrNoDatabase }
