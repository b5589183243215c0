package repository

import "github.com/jhoicas/Compuestos-api/internal/domain/entity"

// OrderRepository define el puerto de persistencia para órdenes de
// producción. Las órdenes son inmutables: solo Create y lectura.
type OrderRepository interface {
	Create(o *entity.Order) error
	GetByID(id string) (*entity.Order, error)
	List() ([]*entity.Order, error)
}
