package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
)

// CreateFormulaRequest body para POST /api/formulas. El consumption de cada
// ingrediente se recalcula en el servidor; cualquier valor enviado se ignora.
type CreateFormulaRequest struct {
	Name          string              `json:"name"`
	LotMultiplier decimal.Decimal     `json:"lotMultiplier"`
	Ingredients   []entity.Ingredient `json:"ingredients"`
	TotalWeight   decimal.Decimal     `json:"totalWeight"`
}

// UpdateFormulaRequest body para PUT /api/formulas/:id. Reemplaza nombre y
// lista de ingredientes; lotMultiplier y totalWeight quedan congelados.
type UpdateFormulaRequest struct {
	Name        string              `json:"name"`
	Ingredients []entity.Ingredient `json:"ingredients"`
}

// FormulaResponse representación de una fórmula.
type FormulaResponse struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	LotMultiplier decimal.Decimal     `json:"lotMultiplier"`
	Ingredients   []entity.Ingredient `json:"ingredients"`
	TotalWeight   decimal.Decimal     `json:"totalWeight"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// FormulaListResponse listado de fórmulas.
type FormulaListResponse struct {
	Items []FormulaResponse `json:"items"`
	Total int               `json:"total"`
}
