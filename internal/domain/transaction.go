package domain

import "context"

// TxManager runs fn inside a single store transaction. The transaction is carried
// by the context passed to fn; repositories called with that context join it.
// It commits when fn returns nil and rolls back otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
