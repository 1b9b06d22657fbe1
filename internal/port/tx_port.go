package port

import "context"

// TxRepos bundles the repositories bound to one storage transaction.
type TxRepos struct {
	Carts    CartRepository
	Products ProductRepository
	Orders   OrderRepository
}

// Transactor runs fn within a single transaction: either every write in
// fn commits or none of them do.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
