package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
)

// SubmitOrderRequest body para POST /api/orders.
type SubmitOrderRequest struct {
	Date              string          `json:"date"`
	Shift             string          `json:"shift"`
	OrderNo           string          `json:"orderNo"`
	MachineNo         string          `json:"machineNo"`
	Operator          string          `json:"operator"`
	BatchNo           string          `json:"batchNo"`
	BatchWeight       decimal.Decimal `json:"batchWeight"`
	NumberOfBatches   int             `json:"numberOfBatches"`
	Remarks           string          `json:"remarks,omitempty"`
	SelectedFormulaID string          `json:"selectedFormulaId"`
}

// OrderResponse representación de una orden con su snapshot de consumo.
// FormulaName viene del join con el catálogo (puede faltar si la fórmula fue
// borrada después de la orden).
type OrderResponse struct {
	ID              string                   `json:"id"`
	Date            string                   `json:"date"`
	Shift           string                   `json:"shift"`
	OrderNo         string                   `json:"orderNo"`
	MachineNo       string                   `json:"machineNo"`
	Operator        string                   `json:"operator"`
	BatchNo         string                   `json:"batchNo"`
	BatchWeight     decimal.Decimal          `json:"batchWeight"`
	NumberOfBatches int                      `json:"numberOfBatches"`
	Remarks         string                   `json:"remarks,omitempty"`
	FormulaID       string                   `json:"selectedFormulaId"`
	FormulaName     string                   `json:"formulaName,omitempty"`
	Consumptions    []entity.ConsumptionLine `json:"consumptions"`
	CreatedAt       time.Time                `json:"createdAt"`
}

// OrderListResponse listado de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Total int             `json:"total"`
}
