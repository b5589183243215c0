package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	appledger "github.com/jhoicas/Compuestos-api/internal/application/ledger"
	apporder "github.com/jhoicas/Compuestos-api/internal/application/order"
	"github.com/jhoicas/Compuestos-api/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner and order.TxRunner.
var _ appledger.TxRunner = (*TxRunner)(nil)
var _ apporder.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Los SELECT FOR UPDATE de los repos serializan dentro de
// esta tx las escrituras concurrentes sobre un mismo material.
func (r *TxRunner) Run(ctx context.Context, fn func(
	matRepo repository.MaterialRepository,
	entryRepo repository.LedgerEntryRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewMaterialRepository(tx), NewLedgerEntryRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunOrder inicia una transacción con los repos de la deducción de una orden
// (materiales + asientos + órdenes). Un error de fn aborta la transacción
// completa: ninguna deducción parcial queda observable.
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	matRepo repository.MaterialRepository,
	entryRepo repository.LedgerEntryRepository,
	orderRepo repository.OrderRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewMaterialRepository(tx), NewLedgerEntryRepository(tx), NewOrderRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
