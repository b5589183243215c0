// Package compounding contiene los servicios de dominio puros del motor de
// compounding: el cálculo del consumo cacheado por ingrediente y el plan de
// consumo de una orden de producción.
package compounding

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compuestos-api/internal/domain"
	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
)

// RefreshConsumptions recalcula el consumo cacheado de cada ingrediente:
// consumption = ratio × lotMultiplier. Se invoca en cada guardado de la
// fórmula (create y update); cualquier valor enviado por el cliente se
// sobreescribe. Con lotMultiplier no positivo el cache se limpia: la fórmula
// queda incompleta y el planner la rechazará con ErrMissingConsumption.
func RefreshConsumptions(f *entity.Formula) {
	for i := range f.Ingredients {
		if f.LotMultiplier.IsPositive() {
			c := f.Ingredients[i].Ratio.Mul(f.LotMultiplier)
			f.Ingredients[i].Consumption = &c
		} else {
			f.Ingredients[i].Consumption = nil
		}
	}
}

// Plan calcula la cantidad exacta a deducir de cada ingrediente para una
// orden: quantity = consumption × numberOfBatches. Función pura, determinista
// y sin estado. El consumo se toma tal como está cacheado en la fórmula
// (dimensionamiento de lote); batchWeight dimensiona la orden pero no entra
// en el cálculo por ingrediente, igual que en el proceso de planta original.
// Falla con ErrMissingConsumption si algún ingrediente no tiene consumo.
func Plan(f *entity.Formula, batchWeight decimal.Decimal, numberOfBatches int) ([]entity.ConsumptionLine, error) {
	n := decimal.NewFromInt(int64(numberOfBatches))
	lines := make([]entity.ConsumptionLine, 0, len(f.Ingredients))
	for _, ing := range f.Ingredients {
		if ing.Consumption == nil {
			return nil, fmt.Errorf("ingrediente %q: %w", ing.Name, domain.ErrMissingConsumption)
		}
		lines = append(lines, entity.ConsumptionLine{
			Ingredient: ing.Name,
			Quantity:   ing.Consumption.Mul(n),
		})
	}
	return lines, nil
}
