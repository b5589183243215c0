package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConsumptionLine es una línea del snapshot de consumo persistido con la
// orden: qué ingrediente, cuánto se dedujo y contra qué material. Applied es
// false cuando el ingrediente no tenía material en inventario y se omitió
// (vínculo débil por nombre); queda registrado para auditoría.
type ConsumptionLine struct {
	Ingredient string          `json:"ingredient"`
	Quantity   decimal.Decimal `json:"quantity"`
	MaterialID string          `json:"materialId,omitempty"`
	Applied    bool            `json:"applied"`
}

// Order es una orden de producción. Inmutable después de creada: no hay
// update ni delete; las correcciones de inventario se hacen con asientos
// compensatorios en el libro mayor. Consumptions es el snapshot de cantidades
// calculadas al momento de la orden, conservado aunque la fórmula se edite
// después.
type Order struct {
	ID              string
	Date            string
	Shift           string
	OrderNo         string
	MachineNo       string
	Operator        string
	BatchNo         string
	BatchWeight     decimal.Decimal
	NumberOfBatches int
	Remarks         string
	FormulaID       string // referencia por id al catálogo, nunca una copia
	Consumptions    []ConsumptionLine
	CreatedAt       time.Time
}
