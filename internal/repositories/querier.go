package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by *pgxpool.Pool, pgx.Tx and the pgxmock pool, so every
// repository can run against the shared pool or inside a caller-owned
// transaction without changing its code.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB adds transaction support on top of Querier. The orchestrator opens one
// transaction per logical warehouse operation and hands tx-scoped repositories
// to everything it touches.
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}
