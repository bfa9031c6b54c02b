package postgres

import (
	"context"
	"fmt"
)

// TxRepos bundles transaction-scoped repository instances. Everything done
// through them commits or rolls back as one unit.
type TxRepos struct {
	Passengers  *PassengerRepository
	Wallets     *WalletRepository
	Carts       *CartRepository
	Catalog     *CatalogRepository
	Invoices    *InvoiceRepository
	Settlements *SettlementRepository
}

// TransactionCoordinator runs multi-repository units of work inside a
// single database transaction. Debit-then-invoice and settle-then-credit
// must never partially apply, so they go through here.
type TransactionCoordinator struct {
	db *DB
}

func NewTransactionCoordinator(db *DB) *TransactionCoordinator {
	return &TransactionCoordinator{db: db}
}

// WithTransaction executes fn within a database transaction. The callback
// receives repositories bound to that transaction; returning an error rolls
// everything back.
func (tc *TransactionCoordinator) WithTransaction(
	ctx context.Context,
	fn func(ctx context.Context, repos TxRepos) error,
) error {
	tx, err := tc.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	repos := TxRepos{
		Passengers:  &PassengerRepository{q: tx},
		Wallets:     &WalletRepository{q: tx},
		Carts:       &CartRepository{q: tx},
		Catalog:     &CatalogRepository{q: tx},
		Invoices:    &InvoiceRepository{q: tx},
		Settlements: &SettlementRepository{q: tx},
	}

	if err := fn(ctx, repos); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
