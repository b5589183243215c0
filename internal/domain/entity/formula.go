package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient es una línea de la receta. Ratio está en la misma unidad de peso
// que TotalWeight (no es porcentaje). PHR es opcional (dosificación de
// químicos en parts-per-hundred-rubber). Consumption es un valor derivado
// cacheado: ratio × lotMultiplier, recalculado por el catálogo en cada
// guardado; nunca se confía en el valor que envíe el cliente.
// Los tags json definen tanto el contrato HTTP como la columna JSONB.
type Ingredient struct {
	Type        string           `json:"type"`
	Name        string           `json:"name"`
	Ratio       decimal.Decimal  `json:"ratio"`
	PHR         *decimal.Decimal `json:"phr,omitempty"`
	Consumption *decimal.Decimal `json:"consumption,omitempty"`
}

// Formula es una receta nombrada de compounding: lista ordenada de
// ingredientes con ratios y un peso total declarado. El nombre es único.
// Invariante en creación: TotalWeight == suma de ratios. En update el
// comportamiento es permisivo (ver catálogo): TotalWeight queda congelado.
type Formula struct {
	ID            string
	Name          string
	LotMultiplier decimal.Decimal // escala la receta base a un lote de producción
	Ingredients   []Ingredient
	TotalWeight   decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IngredientTotal suma los ratios de la receta (peso total real de la base).
func (f *Formula) IngredientTotal() decimal.Decimal {
	total := decimal.Zero
	for _, ing := range f.Ingredients {
		total = total.Add(ing.Ratio)
	}
	return total
}
