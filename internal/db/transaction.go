package db

import "context"

// TransactionManager defines the interface for running operations in a
// transaction. The enqueue path runs inside it so an outbox record is durable
// exactly when the state change that produced it is.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(sessCtx context.Context) (interface{}, error)) (interface{}, error)
}
