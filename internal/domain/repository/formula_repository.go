package repository

import "github.com/jhoicas/Compuestos-api/internal/domain/entity"

// FormulaRepository define el puerto de persistencia para el catálogo de
// fórmulas.
type FormulaRepository interface {
	Create(f *entity.Formula) error
	GetByID(id string) (*entity.Formula, error)
	GetByName(name string) (*entity.Formula, error)
	Update(f *entity.Formula) error
	Delete(id string) error
	List() ([]*entity.Formula, error)
	// ReferencesMaterial indica si alguna fórmula usa el material por nombre
	// (vínculo débil); protege el borrado de materiales referenciados.
	ReferencesMaterial(materialName string) (bool, error)
}
