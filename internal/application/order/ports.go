package order

import (
	"context"

	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
	"github.com/jhoicas/Compuestos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos que la
// orden necesita. Es el mecanismo de atomicidad del reconciliador: o todas
// las deducciones de la orden se confirman junto con la orden, o ninguna.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		matRepo repository.MaterialRepository,
		entryRepo repository.LedgerEntryRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// SheetGenerator genera la hoja de producción (PDF) de una orden.
type SheetGenerator interface {
	GenerateOrderSheet(ctx context.Context, o *entity.Order, formula *entity.Formula) ([]byte, error)
}
