package ledger

import (
	"context"

	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
	"github.com/jhoicas/Compuestos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor del libro
// mayor: el asiento y la actualización del balance cacheado se confirman
// juntos o no se confirma ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		matRepo repository.MaterialRepository,
		entryRepo repository.LedgerEntryRepository,
	) error) error
}

// BookExporter serializa el libro de inventario completo (resumen de
// materiales + movimientos) a un archivo descargable.
type BookExporter interface {
	Export(materials []*entity.Material, histories map[string][]entity.LedgerEntry) ([]byte, error)
}
