package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas). Se devuelven tipados al
// llamador; la capa administrativa los traduce a mensajes de usuario.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidTransaction = errors.New("transacción inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrInvalidIngredients = errors.New("ingredientes inválidos")
	ErrFormulaNotFound    = errors.New("fórmula no encontrada")
	ErrMissingConsumption = errors.New("ingrediente sin consumo calculado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrLedgerFailure      = errors.New("fallo al aplicar deducciones del libro mayor")
)

// LedgerFailure indica que la deducción atómica de una orden no pudo
// aplicarse; ningún balance quedó modificado. Ingredient identifica la línea
// que provocó el aborto. errors.Is(err, ErrLedgerFailure) es verdadero.
type LedgerFailure struct {
	Ingredient string
	Err        error
}

func (e *LedgerFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("deducción de %q: %v", e.Ingredient, e.Err)
	}
	return fmt.Sprintf("deducción de %q fallida", e.Ingredient)
}

func (e *LedgerFailure) Unwrap() error { return e.Err }

// Is hace que la falla estructurada responda al centinela ErrLedgerFailure.
func (e *LedgerFailure) Is(target error) bool { return target == ErrLedgerFailure }
