package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle passed through repository calls.
// Repositories must gracefully accept NoTX (non-transactional path);
// the concrete type is infra-defined (pgx.Tx for Postgres).
type Tx interface{}

// NoTX is the explicit "no transaction" handle.
var NoTX Tx

// TransactionManager runs a function inside a database transaction,
// passing the tx handle to repositories via their Tx argument. Keeping
// the handle opaque keeps use-case interfaces free of driver types.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
