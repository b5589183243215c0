package memory

import (
	"context"

	appledger "github.com/jhoicas/Compuestos-api/internal/application/ledger"
	apporder "github.com/jhoicas/Compuestos-api/internal/application/order"
	"github.com/jhoicas/Compuestos-api/internal/domain/repository"
)

// Verify interface compliance.
var _ appledger.TxRunner = (*TxRunner)(nil)
var _ apporder.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta funciones de forma serializable sobre el store: toma el
// mutex durante toda la transacción, guarda un snapshot y lo restaura si la
// función falla, de modo que los cambios se aplican todo-o-nada.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner { return &TxRunner{s: s} }

func (r *TxRunner) run(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snap := r.s.snapshot()
	if err := fn(); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

// Run ejecuta fn con repositorios ligados a la transacción.
func (r *TxRunner) Run(ctx context.Context, fn func(matRepo repository.MaterialRepository, entryRepo repository.LedgerEntryRepository) error) error {
	return r.run(ctx, func() error {
		return fn(&MaterialRepo{s: r.s, tx: true}, &LedgerEntryRepo{s: r.s, tx: true})
	})
}

// RunOrder ejecuta fn con los tres repositorios que necesita una orden.
func (r *TxRunner) RunOrder(ctx context.Context, fn func(matRepo repository.MaterialRepository, entryRepo repository.LedgerEntryRepository, orderRepo repository.OrderRepository) error) error {
	return r.run(ctx, func() error {
		return fn(&MaterialRepo{s: r.s, tx: true}, &LedgerEntryRepo{s: r.s, tx: true}, &OrderRepo{s: r.s, tx: true})
	})
}
