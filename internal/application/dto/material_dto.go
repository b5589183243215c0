package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest body para POST /api/materials (alta administrativa).
// Un openingBalance positivo siembra el libro mayor con un asiento
// "Opening stock" para que el invariante balance == cola del historial se
// cumpla desde el nacimiento del material.
type CreateMaterialRequest struct {
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Unit           string          `json:"unit,omitempty"`
	OpeningBalance decimal.Decimal `json:"openingBalance,omitempty"`
}

// UpdateMaterialRequest body para PUT /api/materials/:id. Solo campos
// descriptivos; el balance no es editable directamente.
type UpdateMaterialRequest struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
	Unit     *string `json:"unit,omitempty"`
}

// RecordTransactionRequest body para POST /api/materials/:id/transactions.
type RecordTransactionRequest struct {
	Particulars string          `json:"particulars"`
	Inward      decimal.Decimal `json:"inward"`
	Outward     decimal.Decimal `json:"outward"`
	Remarks     string          `json:"remarks,omitempty"`
}

// LedgerEntryResponse un asiento del libro mayor.
type LedgerEntryResponse struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Particulars string          `json:"particulars"`
	Inward      decimal.Decimal `json:"inward"`
	Outward     decimal.Decimal `json:"outward"`
	Balance     decimal.Decimal `json:"balance"`
	Remarks     string          `json:"remarks,omitempty"`
}

// MaterialResponse representación de un material.
type MaterialResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Unit      string          `json:"unit"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// MaterialWithHistoryResponse material con su historial completo (logs).
type MaterialWithHistoryResponse struct {
	MaterialResponse
	Logs []LedgerEntryResponse `json:"logs"`
}

// MaterialListResponse listado de materiales.
type MaterialListResponse struct {
	Items []MaterialResponse `json:"items"`
	Total int                `json:"total"`
}
