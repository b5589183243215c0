package repository

import "github.com/jhoicas/Compuestos-api/internal/domain/entity"

// LedgerEntryRepository define el puerto de persistencia del historial
// append-only. No hay update ni delete: las entradas son inmutables.
type LedgerEntryRepository interface {
	Append(e *entity.LedgerEntry) error
	// ListByMaterial devuelve el historial completo en orden de inserción.
	// Releer devuelve la misma secuencia hasta que un Append agregue al final.
	ListByMaterial(materialID string) ([]entity.LedgerEntry, error)
}
