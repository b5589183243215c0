package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
)

// MaterialRepository define el puerto de persistencia para Material (DIP).
// El balance solo se actualiza vía UpdateBalance desde el motor del libro
// mayor, dentro de una transacción; Update cubre únicamente campos
// descriptivos.
type MaterialRepository interface {
	Create(m *entity.Material) error
	GetByID(id string) (*entity.Material, error)
	// GetByName resuelve el vínculo débil ingrediente→material por nombre.
	GetByName(name string) (*entity.Material, error)
	// GetForUpdate bloquea la fila del material (SELECT FOR UPDATE) para
	// serializar las transacciones concurrentes sobre un mismo material.
	GetForUpdate(id string) (*entity.Material, error)
	Update(m *entity.Material) error
	UpdateBalance(id string, balance decimal.Decimal) error
	// List devuelve los materiales en orden de inserción en el catálogo;
	// category vacío lista todos.
	List(category string) ([]*entity.Material, error)
	Delete(id string) error
}
