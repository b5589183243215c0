// Package memory implementa el backend en memoria: los mismos puertos de
// persistencia que el adaptador PostgreSQL, respaldados por mapas bajo un
// mutex global de store. Las transacciones son serializables por construcción
// (el mutex se sostiene durante toda la transacción) y el rollback es un
// two-phase apply: snapshot del estado al abrir, restore si fn falla.
// Respalda los tests de casos de uso y el modo DB_DRIVER=memory.
package memory

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compuestos-api/internal/domain"
	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
)

// Store estado compartido del backend en memoria. Los repos devuelven y
// guardan copias: nada de lo que el caller mute fuera de una transacción
// afecta el estado interno.
type Store struct {
	mu        sync.Mutex
	materials map[string]entity.Material
	matOrder  []string // orden de inserción del catálogo
	entries   map[string][]entity.LedgerEntry
	formulas  map[string]entity.Formula
	formOrder []string
	orders    map[string]entity.Order
	ordOrder  []string
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		materials: make(map[string]entity.Material),
		entries:   make(map[string][]entity.LedgerEntry),
		formulas:  make(map[string]entity.Formula),
		orders:    make(map[string]entity.Order),
	}
}

// snapshot copia el estado completo. Las entidades se copian por valor y los
// slices se clonan; Ingredients/Consumptions internos no se comparten porque
// los repos guardan copias profundas al escribir.
type snapshot struct {
	materials map[string]entity.Material
	matOrder  []string
	entries   map[string][]entity.LedgerEntry
	formulas  map[string]entity.Formula
	formOrder []string
	orders    map[string]entity.Order
	ordOrder  []string
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		materials: make(map[string]entity.Material, len(s.materials)),
		matOrder:  append([]string(nil), s.matOrder...),
		entries:   make(map[string][]entity.LedgerEntry, len(s.entries)),
		formulas:  make(map[string]entity.Formula, len(s.formulas)),
		formOrder: append([]string(nil), s.formOrder...),
		orders:    make(map[string]entity.Order, len(s.orders)),
		ordOrder:  append([]string(nil), s.ordOrder...),
	}
	for k, v := range s.materials {
		snap.materials[k] = v
	}
	for k, v := range s.entries {
		snap.entries[k] = append([]entity.LedgerEntry(nil), v...)
	}
	for k, v := range s.formulas {
		snap.formulas[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.materials = snap.materials
	s.matOrder = snap.matOrder
	s.entries = snap.entries
	s.formulas = snap.formulas
	s.formOrder = snap.formOrder
	s.orders = snap.orders
	s.ordOrder = snap.ordOrder
}

// ── Materiales ────────────────────────────────────────────────────────────────

func (s *Store) createMaterial(m *entity.Material) error {
	for _, existing := range s.materials {
		if existing.Name == m.Name {
			return domain.ErrDuplicate
		}
	}
	s.materials[m.ID] = copyMaterial(*m)
	s.matOrder = append(s.matOrder, m.ID)
	return nil
}

func (s *Store) getMaterial(id string) *entity.Material {
	m, ok := s.materials[id]
	if !ok {
		return nil
	}
	out := copyMaterial(m)
	return &out
}

func (s *Store) getMaterialByName(name string) *entity.Material {
	for _, id := range s.matOrder {
		m := s.materials[id]
		if m.Name == name {
			out := copyMaterial(m)
			return &out
		}
	}
	return nil
}

func (s *Store) updateMaterial(m *entity.Material) error {
	if _, ok := s.materials[m.ID]; !ok {
		return domain.ErrNotFound
	}
	s.materials[m.ID] = copyMaterial(*m)
	return nil
}

func (s *Store) updateBalance(id string, balance decimal.Decimal) error {
	m, ok := s.materials[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.Balance = balance
	s.materials[id] = m
	return nil
}

func (s *Store) listMaterials(category string) []*entity.Material {
	list := make([]*entity.Material, 0, len(s.matOrder))
	for _, id := range s.matOrder {
		m := s.materials[id]
		if category != "" && m.Category != category {
			continue
		}
		out := copyMaterial(m)
		list = append(list, &out)
	}
	return list
}

func (s *Store) deleteMaterial(id string) {
	delete(s.materials, id)
	delete(s.entries, id)
	for i, mid := range s.matOrder {
		if mid == id {
			s.matOrder = append(s.matOrder[:i], s.matOrder[i+1:]...)
			break
		}
	}
}

func copyMaterial(m entity.Material) entity.Material { return m }

// ── Asientos ─────────────────────────────────────────────────────────────────

func (s *Store) appendEntry(e *entity.LedgerEntry) {
	s.entries[e.MaterialID] = append(s.entries[e.MaterialID], *e)
}

func (s *Store) listEntries(materialID string) []entity.LedgerEntry {
	return append([]entity.LedgerEntry(nil), s.entries[materialID]...)
}

// ── Fórmulas ─────────────────────────────────────────────────────────────────

func (s *Store) createFormula(f *entity.Formula) error {
	for _, existing := range s.formulas {
		if existing.Name == f.Name {
			return domain.ErrDuplicate
		}
	}
	s.formulas[f.ID] = copyFormula(*f)
	s.formOrder = append(s.formOrder, f.ID)
	return nil
}

func (s *Store) getFormula(id string) *entity.Formula {
	f, ok := s.formulas[id]
	if !ok {
		return nil
	}
	out := copyFormula(f)
	return &out
}

func (s *Store) getFormulaByName(name string) *entity.Formula {
	for _, id := range s.formOrder {
		f := s.formulas[id]
		if f.Name == name {
			out := copyFormula(f)
			return &out
		}
	}
	return nil
}

func (s *Store) updateFormula(f *entity.Formula) error {
	if _, ok := s.formulas[f.ID]; !ok {
		return domain.ErrNotFound
	}
	s.formulas[f.ID] = copyFormula(*f)
	return nil
}

func (s *Store) deleteFormula(id string) {
	delete(s.formulas, id)
	for i, fid := range s.formOrder {
		if fid == id {
			s.formOrder = append(s.formOrder[:i], s.formOrder[i+1:]...)
			break
		}
	}
}

func (s *Store) listFormulas() []*entity.Formula {
	list := make([]*entity.Formula, 0, len(s.formOrder))
	for _, id := range s.formOrder {
		f := copyFormula(s.formulas[id])
		list = append(list, &f)
	}
	return list
}

func (s *Store) referencesMaterial(name string) bool {
	for _, f := range s.formulas {
		for _, ing := range f.Ingredients {
			if ing.Name == name {
				return true
			}
		}
	}
	return false
}

func copyFormula(f entity.Formula) entity.Formula {
	f.Ingredients = append([]entity.Ingredient(nil), f.Ingredients...)
	for i := range f.Ingredients {
		if f.Ingredients[i].PHR != nil {
			phr := *f.Ingredients[i].PHR
			f.Ingredients[i].PHR = &phr
		}
		if f.Ingredients[i].Consumption != nil {
			c := *f.Ingredients[i].Consumption
			f.Ingredients[i].Consumption = &c
		}
	}
	return f
}

// ── Órdenes ──────────────────────────────────────────────────────────────────

func (s *Store) createOrder(o *entity.Order) {
	s.orders[o.ID] = copyOrder(*o)
	s.ordOrder = append(s.ordOrder, o.ID)
}

func (s *Store) getOrder(id string) *entity.Order {
	o, ok := s.orders[id]
	if !ok {
		return nil
	}
	out := copyOrder(o)
	return &out
}

func (s *Store) listOrders() []*entity.Order {
	list := make([]*entity.Order, 0, len(s.ordOrder))
	for _, id := range s.ordOrder {
		o := copyOrder(s.orders[id])
		list = append(list, &o)
	}
	// Más recientes primero, igual que el adaptador PostgreSQL.
	sort.SliceStable(list, func(a, b int) bool {
		return list[a].CreatedAt.After(list[b].CreatedAt)
	})
	return list
}

func copyOrder(o entity.Order) entity.Order {
	o.Consumptions = append([]entity.ConsumptionLine(nil), o.Consumptions...)
	return o
}
