package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de materia prima. El campo es un string abierto: estas constantes
// cubren los casos conocidos del compounding pero no restringen otros valores.
const (
	CategoryRubber   = "rubber"   // caucho (EPDM, NBR, SBR...)
	CategoryChemical = "chemical" // químicos dosificados por PHR
)

// Material representa una materia prima del inventario de compounding.
// Balance es el valor cacheado de la cola del libro mayor: siempre igual al
// balance de la última LedgerEntry (0 si el libro está vacío). Solo el motor
// del libro mayor lo muta; no existe edición directa de balance.
type Material struct {
	ID        string
	Name      string
	Category  string
	Unit      string          // unidad de medida, "kg" por defecto
	Balance   decimal.Decimal // cola cacheada del libro mayor
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LedgerEntry es una transacción del libro mayor de un material. Inmutable una
// vez registrada: el historial es append-only, las correcciones se hacen con
// asientos compensatorios, nunca editando o borrando.
type LedgerEntry struct {
	ID          string
	MaterialID  string
	Date        time.Time
	Particulars string          // descripción libre ("Order 1042", "Opening stock"...)
	Inward      decimal.Decimal // entrada, >= 0
	Outward     decimal.Decimal // salida, >= 0
	Balance     decimal.Decimal // balance resultante; puede ser negativo
	Remarks     string
	CreatedAt   time.Time
}
