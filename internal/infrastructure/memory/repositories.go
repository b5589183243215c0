package memory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
	"github.com/jhoicas/Compuestos-api/internal/domain/repository"
)

// Verify interface compliance.
var _ repository.MaterialRepository = (*MaterialRepo)(nil)
var _ repository.LedgerEntryRepository = (*LedgerEntryRepo)(nil)
var _ repository.FormulaRepository = (*FormulaRepo)(nil)
var _ repository.OrderRepository = (*OrderRepo)(nil)

// Los repos fuera de transacción toman el mutex del store por llamada; los
// que entrega el TxRunner corren con el mutex ya sostenido (tx=true) durante
// toda la transacción, que es lo que serializa las escrituras concurrentes.

// MaterialRepo repositorio de materiales en memoria.
type MaterialRepo struct {
	s  *Store
	tx bool
}

// NewMaterialRepository construye el repositorio sobre el store.
func NewMaterialRepository(s *Store) *MaterialRepo { return &MaterialRepo{s: s} }

func (r *MaterialRepo) lock() func() {
	if r.tx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *MaterialRepo) Create(m *entity.Material) error {
	defer r.lock()()
	return r.s.createMaterial(m)
}

func (r *MaterialRepo) GetByID(id string) (*entity.Material, error) {
	defer r.lock()()
	return r.s.getMaterial(id), nil
}

func (r *MaterialRepo) GetByName(name string) (*entity.Material, error) {
	defer r.lock()()
	return r.s.getMaterialByName(name), nil
}

// GetForUpdate en memoria equivale a GetByID: el mutex global del TxRunner ya
// excluye a cualquier otra transacción.
func (r *MaterialRepo) GetForUpdate(id string) (*entity.Material, error) {
	defer r.lock()()
	return r.s.getMaterial(id), nil
}

func (r *MaterialRepo) Update(m *entity.Material) error {
	defer r.lock()()
	return r.s.updateMaterial(m)
}

func (r *MaterialRepo) UpdateBalance(id string, balance decimal.Decimal) error {
	defer r.lock()()
	return r.s.updateBalance(id, balance)
}

func (r *MaterialRepo) List(category string) ([]*entity.Material, error) {
	defer r.lock()()
	return r.s.listMaterials(category), nil
}

func (r *MaterialRepo) Delete(id string) error {
	defer r.lock()()
	r.s.deleteMaterial(id)
	return nil
}

// LedgerEntryRepo historial append-only en memoria.
type LedgerEntryRepo struct {
	s  *Store
	tx bool
}

// NewLedgerEntryRepository construye el repositorio sobre el store.
func NewLedgerEntryRepository(s *Store) *LedgerEntryRepo { return &LedgerEntryRepo{s: s} }

func (r *LedgerEntryRepo) lock() func() {
	if r.tx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *LedgerEntryRepo) Append(e *entity.LedgerEntry) error {
	defer r.lock()()
	r.s.appendEntry(e)
	return nil
}

func (r *LedgerEntryRepo) ListByMaterial(materialID string) ([]entity.LedgerEntry, error) {
	defer r.lock()()
	return r.s.listEntries(materialID), nil
}

// FormulaRepo catálogo de fórmulas en memoria.
type FormulaRepo struct {
	s *Store
}

// NewFormulaRepository construye el repositorio sobre el store.
func NewFormulaRepository(s *Store) *FormulaRepo { return &FormulaRepo{s: s} }

func (r *FormulaRepo) Create(f *entity.Formula) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.createFormula(f)
}

func (r *FormulaRepo) GetByID(id string) (*entity.Formula, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.getFormula(id), nil
}

func (r *FormulaRepo) GetByName(name string) (*entity.Formula, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.getFormulaByName(name), nil
}

func (r *FormulaRepo) Update(f *entity.Formula) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.updateFormula(f)
}

func (r *FormulaRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.deleteFormula(id)
	return nil
}

func (r *FormulaRepo) List() ([]*entity.Formula, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.listFormulas(), nil
}

func (r *FormulaRepo) ReferencesMaterial(materialName string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.referencesMaterial(materialName), nil
}

// OrderRepo órdenes en memoria.
type OrderRepo struct {
	s  *Store
	tx bool
}

// NewOrderRepository construye el repositorio sobre el store.
func NewOrderRepository(s *Store) *OrderRepo { return &OrderRepo{s: s} }

func (r *OrderRepo) lock() func() {
	if r.tx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *OrderRepo) Create(o *entity.Order) error {
	defer r.lock()()
	r.s.createOrder(o)
	return nil
}

func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	defer r.lock()()
	return r.s.getOrder(id), nil
}

func (r *OrderRepo) List() ([]*entity.Order, error) {
	defer r.lock()()
	return r.s.listOrders(), nil
}
