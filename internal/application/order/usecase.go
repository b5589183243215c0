package order

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compuestos-api/internal/application/dto"
	"github.com/jhoicas/Compuestos-api/internal/domain"
	"github.com/jhoicas/Compuestos-api/internal/domain/compounding"
	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
	domledger "github.com/jhoicas/Compuestos-api/internal/domain/ledger"
	"github.com/jhoicas/Compuestos-api/internal/domain/repository"
	"github.com/jhoicas/Compuestos-api/pkg/logger"
)

// orderTimeout cota superior para la transacción completa de una orden,
// incluida la espera por los bloqueos de fila de cada material.
const orderTimeout = 10 * time.Second

// SubmitOrderUseCase es el reconciliador de órdenes: valida la orden,
// resuelve la fórmula, obtiene el plan de consumo y aplica todas las
// deducciones al libro mayor como una sola unidad. Contrato central del
// sistema: o todas las deducciones se confirman junto con la orden, o
// ninguna se aplica y la orden se rechaza con LedgerFailure.
type SubmitOrderUseCase struct {
	txRunner TxRunner
	formulas repository.FormulaRepository
	orders   repository.OrderRepository
	sheets   SheetGenerator
	log      *logger.Logger
}

// NewSubmitOrderUseCase construye el caso de uso.
func NewSubmitOrderUseCase(
	txRunner TxRunner,
	formulas repository.FormulaRepository,
	orders repository.OrderRepository,
	sheets SheetGenerator,
	log *logger.Logger,
) *SubmitOrderUseCase {
	return &SubmitOrderUseCase{
		txRunner: txRunner,
		formulas: formulas,
		orders:   orders,
		sheets:   sheets,
		log:      log,
	}
}

// Submit procesa una orden de producción. Ingredientes sin material en
// inventario se omiten con advertencia registrada (vínculo débil por nombre),
// nunca como fallo parcial: en el snapshot quedan con applied=false. Un fallo
// a mitad de deducción aborta la transacción completa, no deja ningún balance
// modificado y devuelve LedgerFailure con el ingrediente culpable.
func (uc *SubmitOrderUseCase) Submit(ctx context.Context, in dto.SubmitOrderRequest) (*dto.OrderResponse, error) {
	if err := validateSubmit(in); err != nil {
		return nil, err
	}

	formula, err := uc.formulas.GetByID(in.SelectedFormulaID)
	if err != nil {
		return nil, err
	}
	if formula == nil {
		return nil, domain.ErrFormulaNotFound
	}

	lines, err := compounding.Plan(formula, in.BatchWeight, in.NumberOfBatches)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	o := &entity.Order{
		ID:              uuid.New().String(),
		Date:            in.Date,
		Shift:           in.Shift,
		OrderNo:         in.OrderNo,
		MachineNo:       in.MachineNo,
		Operator:        in.Operator,
		BatchNo:         in.BatchNo,
		BatchWeight:     in.BatchWeight,
		NumberOfBatches: in.NumberOfBatches,
		Remarks:         in.Remarks,
		FormulaID:       formula.ID,
		Consumptions:    lines,
		CreatedAt:       now,
	}

	ctx, cancel := context.WithTimeout(ctx, orderTimeout)
	defer cancel()

	err = uc.txRunner.RunOrder(ctx, func(
		matRepo repository.MaterialRepository,
		entryRepo repository.LedgerEntryRepository,
		orderRepo repository.OrderRepository,
	) error {
		// Fase 1: resolver el vínculo débil nombre→material de cada línea.
		// Los no encontrados se omiten y quedan auditados en el snapshot.
		type deduction struct {
			line       int
			materialID string
		}
		deductions := make([]deduction, 0, len(o.Consumptions))
		for i := range o.Consumptions {
			line := &o.Consumptions[i]
			material, err := matRepo.GetByName(line.Ingredient)
			if err != nil {
				return &domain.LedgerFailure{Ingredient: line.Ingredient, Err: err}
			}
			if material == nil {
				line.Applied = false
				uc.log.Warn().
					Str("order_no", o.OrderNo).
					Str("ingredient", line.Ingredient).
					Msg("ingrediente sin material en inventario, deducción omitida")
				continue
			}
			deductions = append(deductions, deduction{line: i, materialID: material.ID})
		}

		// Fase 2: bloquear y deducir en orden fijo de material id. El orden
		// determinista evita deadlocks entre órdenes concurrentes que tocan
		// los mismos materiales.
		sort.Slice(deductions, func(a, b int) bool {
			return deductions[a].materialID < deductions[b].materialID
		})
		for _, d := range deductions {
			line := &o.Consumptions[d.line]
			material, err := matRepo.GetForUpdate(d.materialID)
			if err != nil {
				return &domain.LedgerFailure{Ingredient: line.Ingredient, Err: err}
			}
			if material == nil {
				return &domain.LedgerFailure{Ingredient: line.Ingredient, Err: domain.ErrNotFound}
			}
			entry := &entity.LedgerEntry{
				ID:          uuid.New().String(),
				MaterialID:  material.ID,
				Date:        now,
				Particulars: "Order " + o.OrderNo,
				Inward:      decimal.Zero,
				Outward:     line.Quantity,
				Balance:     domledger.NextBalance(material.Balance, decimal.Zero, line.Quantity),
				CreatedAt:   now,
			}
			if err := entryRepo.Append(entry); err != nil {
				return &domain.LedgerFailure{Ingredient: line.Ingredient, Err: err}
			}
			if err := matRepo.UpdateBalance(material.ID, entry.Balance); err != nil {
				return &domain.LedgerFailure{Ingredient: line.Ingredient, Err: err}
			}
			line.MaterialID = material.ID
			line.Applied = true
		}

		return orderRepo.Create(o)
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &domain.LedgerFailure{Err: err}
		}
		return nil, err
	}

	resp := toOrderResponse(o)
	resp.FormulaName = formula.Name
	return resp, nil
}

// List lista las órdenes con el nombre de la fórmula referenciada.
func (uc *SubmitOrderUseCase) List() (*dto.OrderListResponse, error) {
	list, err := uc.orders.List()
	if err != nil {
		return nil, err
	}
	formulas, err := uc.formulas.List()
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(formulas))
	for _, f := range formulas {
		names[f.ID] = f.Name
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		resp := toOrderResponse(o)
		resp.FormulaName = names[o.FormulaID]
		items = append(items, *resp)
	}
	return &dto.OrderListResponse{Items: items, Total: len(items)}, nil
}

// GetByID obtiene una orden con su snapshot de consumo.
func (uc *SubmitOrderUseCase) GetByID(id string) (*dto.OrderResponse, error) {
	o, err := uc.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	resp := toOrderResponse(o)
	if f, err := uc.formulas.GetByID(o.FormulaID); err == nil && f != nil {
		resp.FormulaName = f.Name
	}
	return resp, nil
}

// GenerateSheet genera la hoja de producción PDF de una orden.
func (uc *SubmitOrderUseCase) GenerateSheet(ctx context.Context, id string) ([]byte, error) {
	o, err := uc.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	formula, err := uc.formulas.GetByID(o.FormulaID)
	if err != nil {
		return nil, err
	}
	if formula == nil {
		// La orden sobrevive al borrado de su fórmula: la hoja se genera
		// desde el snapshot, con un encabezado de marcador.
		formula = &entity.Formula{ID: o.FormulaID, Name: "(fórmula eliminada)"}
	}
	return uc.sheets.GenerateOrderSheet(ctx, o, formula)
}

func validateSubmit(in dto.SubmitOrderRequest) error {
	for _, field := range []string{in.Date, in.Shift, in.OrderNo, in.MachineNo, in.Operator, in.BatchNo} {
		if strings.TrimSpace(field) == "" {
			return domain.ErrInvalidInput
		}
	}
	if !in.BatchWeight.IsPositive() {
		return domain.ErrInvalidInput
	}
	if in.NumberOfBatches < 1 {
		return domain.ErrInvalidInput
	}
	if in.SelectedFormulaID == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	return &dto.OrderResponse{
		ID:              o.ID,
		Date:            o.Date,
		Shift:           o.Shift,
		OrderNo:         o.OrderNo,
		MachineNo:       o.MachineNo,
		Operator:        o.Operator,
		BatchNo:         o.BatchNo,
		BatchWeight:     o.BatchWeight,
		NumberOfBatches: o.NumberOfBatches,
		Remarks:         o.Remarks,
		FormulaID:       o.FormulaID,
		Consumptions:    o.Consumptions,
		CreatedAt:       o.CreatedAt,
	}
}
