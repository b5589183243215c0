// Package ledger contiene los servicios de dominio puros del libro mayor de
// materiales: cálculo de balance corrido y verificación de consistencia entre
// el balance cacheado y la cola del historial.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compuestos-api/internal/domain"
	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
)

// NextBalance calcula el balance resultante de un asiento:
// balance_n = balance_{n-1} + inward_n - outward_n. Puede ser negativo; el
// libro mayor no impone piso.
func NextBalance(last, inward, outward decimal.Decimal) decimal.Decimal {
	return last.Add(inward).Sub(outward)
}

// ValidateMovement valida el par inward/outward de una transacción: ambos
// deben ser >= 0 y al menos uno distinto de cero.
func ValidateMovement(inward, outward decimal.Decimal) error {
	if inward.IsNegative() || outward.IsNegative() {
		return domain.ErrInvalidTransaction
	}
	if inward.IsZero() && outward.IsZero() {
		return domain.ErrInvalidTransaction
	}
	return nil
}

// Reconcile verifica el invariante del material: el balance cacheado debe ser
// igual al balance de la última entrada del historial (0 con historial
// vacío) y cada entrada debe encadenar con la anterior. Pensado para tests y
// chequeos de auditoría.
func Reconcile(m *entity.Material, history []entity.LedgerEntry) error {
	running := decimal.Zero
	for i, e := range history {
		expected := NextBalance(running, e.Inward, e.Outward)
		if !e.Balance.Equal(expected) {
			return fmt.Errorf("entrada %d del material %s: balance %s, esperado %s",
				i, m.ID, e.Balance, expected)
		}
		running = e.Balance
	}
	if !m.Balance.Equal(running) {
		return fmt.Errorf("material %s: balance cacheado %s no coincide con la cola del historial %s",
			m.ID, m.Balance, running)
	}
	return nil
}
