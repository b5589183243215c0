package order_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compuestos-api/internal/application/dto"
	apporder "github.com/jhoicas/Compuestos-api/internal/application/order"
	"github.com/jhoicas/Compuestos-api/internal/domain"
	"github.com/jhoicas/Compuestos-api/internal/domain/compounding"
	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
	"github.com/jhoicas/Compuestos-api/internal/domain/repository"
	"github.com/jhoicas/Compuestos-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Compuestos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Compuestos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	store       *memory.Store
	uc          *apporder.SubmitOrderUseCase
	materials   repository.MaterialRepository
	formulaRepo repository.FormulaRepository
	formulaID   string
}

// noopSheets evita arrastrar el generador PDF real a los tests de deducción.
type noopSheets struct{}

func (noopSheets) GenerateOrderSheet(_ context.Context, _ *entity.Order, _ *entity.Formula) ([]byte, error) {
	return []byte("%PDF-"), nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "test", Level: "error"})
}

// newFixture monta el caso de uso sobre el backend en memoria con una fórmula
// EPDM-60 (lotMultiplier 2) y los materiales EPDM (100) y Azufre (50).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	materials := memory.NewMaterialRepository(store)
	formulaRepo := memory.NewFormulaRepository(store)

	require.NoError(t, materials.Create(&entity.Material{
		ID: "mat-epdm", Name: "EPDM", Category: entity.CategoryRubber,
		Unit: "kg", Balance: dec("100"),
	}))
	require.NoError(t, materials.Create(&entity.Material{
		ID: "mat-azufre", Name: "Azufre", Category: entity.CategoryChemical,
		Unit: "kg", Balance: dec("50"),
	}))

	formula := &entity.Formula{
		ID:            "form-epdm60",
		Name:          "EPDM-60",
		LotMultiplier: dec("2"),
		Ingredients: []entity.Ingredient{
			{Type: entity.CategoryRubber, Name: "EPDM", Ratio: dec("50")},
			{Type: entity.CategoryChemical, Name: "Azufre", Ratio: dec("1.5")},
		},
		TotalWeight: dec("51.5"),
	}
	compounding.RefreshConsumptions(formula)
	require.NoError(t, formulaRepo.Create(formula))

	uc := apporder.NewSubmitOrderUseCase(
		memory.NewTxRunner(store),
		formulaRepo,
		memory.NewOrderRepository(store),
		noopSheets{},
		testLogger(),
	)
	return &fixture{
		store:       store,
		uc:          uc,
		materials:   materials,
		formulaRepo: formulaRepo,
		formulaID:   formula.ID,
	}
}

func validSubmit(formulaID string) dto.SubmitOrderRequest {
	return dto.SubmitOrderRequest{
		Date:              "2026-08-31",
		Shift:             "A",
		OrderNo:           "ORD-001",
		MachineNo:         "MX-2",
		Operator:          "R. Gómez",
		BatchNo:           "B-17",
		BatchWeight:       dec("51.5"),
		NumberOfBatches:   2,
		SelectedFormulaID: formulaID,
	}
}

func (f *fixture) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	m, err := f.materials.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m.Balance
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Submit — camino feliz
// ──────────────────────────────────────────────────────────────────────────────

// Orden de 2 lotes sobre EPDM-60: con lotMultiplier 2 el consumo por lote es
// 100 (EPDM) y 3 (Azufre); dos lotes deducen 200 y 6.
func TestSubmit_DeduceTodosLosMateriales(t *testing.T) {
	f := newFixture(t)
	// Subimos el stock para cubrir la orden completa.
	require.NoError(t, f.materials.UpdateBalance("mat-epdm", dec("500")))

	out, err := f.uc.Submit(context.Background(), validSubmit(f.formulaID))
	require.NoError(t, err)
	assert.Equal(t, "EPDM-60", out.FormulaName)
	require.Len(t, out.Consumptions, 2)

	assert.Equal(t, "EPDM", out.Consumptions[0].Ingredient)
	assert.True(t, dec("200").Equal(out.Consumptions[0].Quantity), "50 × 2 × 2 = 200")
	assert.True(t, out.Consumptions[0].Applied)
	assert.Equal(t, "mat-epdm", out.Consumptions[0].MaterialID)

	assert.True(t, dec("6").Equal(out.Consumptions[1].Quantity), "1.5 × 2 × 2 = 6")
	assert.True(t, out.Consumptions[1].Applied)

	assert.True(t, dec("300").Equal(f.balance(t, "mat-epdm")), "500 − 200 = 300")
	assert.True(t, dec("44").Equal(f.balance(t, "mat-azufre")), "50 − 6 = 44")
}

// El balance puede quedar negativo: el libro mayor registra la realidad de
// planta, no la bloquea.
func TestSubmit_PermiteBalanceNegativo(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.Submit(context.Background(), validSubmit(f.formulaID))
	require.NoError(t, err)
	require.Len(t, out.Consumptions, 2)

	assert.True(t, dec("-100").Equal(f.balance(t, "mat-epdm")), "100 − 200 = −100")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Submit — ingrediente sin material
// ──────────────────────────────────────────────────────────────────────────────

// Un ingrediente sin material en inventario se omite con applied=false: no es
// fallo parcial y las demás deducciones proceden.
func TestSubmit_IngredienteSinMaterialSeOmite(t *testing.T) {
	f := newFixture(t)
	formula, err := f.formulaRepo.GetByID(f.formulaID)
	require.NoError(t, err)
	formula.Ingredients = append(formula.Ingredients, entity.Ingredient{
		Type: entity.CategoryChemical, Name: "Acelerante fantasma", Ratio: dec("1"),
	})
	compounding.RefreshConsumptions(formula)
	require.NoError(t, f.formulaRepo.Update(formula))

	out, err := f.uc.Submit(context.Background(), validSubmit(f.formulaID))
	require.NoError(t, err)
	require.Len(t, out.Consumptions, 3)

	ghost := out.Consumptions[2]
	assert.Equal(t, "Acelerante fantasma", ghost.Ingredient)
	assert.False(t, ghost.Applied, "la línea omitida queda auditada con applied=false")
	assert.Empty(t, ghost.MaterialID)

	// Las líneas con material sí se aplicaron.
	assert.True(t, out.Consumptions[0].Applied)
	assert.True(t, out.Consumptions[1].Applied)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Submit — validación
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmit_Validacion(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*dto.SubmitOrderRequest)
	}{
		{"sin orderNo", func(in *dto.SubmitOrderRequest) { in.OrderNo = "" }},
		{"sin turno", func(in *dto.SubmitOrderRequest) { in.Shift = " " }},
		{"sin operario", func(in *dto.SubmitOrderRequest) { in.Operator = "" }},
		{"batchWeight cero", func(in *dto.SubmitOrderRequest) { in.BatchWeight = decimal.Zero }},
		{"numberOfBatches cero", func(in *dto.SubmitOrderRequest) { in.NumberOfBatches = 0 }},
		{"sin fórmula", func(in *dto.SubmitOrderRequest) { in.SelectedFormulaID = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			in := validSubmit(f.formulaID)
			tc.mutate(&in)

			_, err := f.uc.Submit(context.Background(), in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			// Ninguna validación fallida debe tocar balances.
			assert.True(t, dec("100").Equal(f.balance(t, "mat-epdm")))
		})
	}
}

func TestSubmit_FormulaInexistente(t *testing.T) {
	f := newFixture(t)
	in := validSubmit("no-existe")

	_, err := f.uc.Submit(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrFormulaNotFound)
}

// Fórmula sin consumo cacheado (lotMultiplier nunca fijado): la orden se
// rechaza antes de tocar el libro mayor.
func TestSubmit_FormulaSinConsumo(t *testing.T) {
	f := newFixture(t)
	formula, err := f.formulaRepo.GetByID(f.formulaID)
	require.NoError(t, err)
	formula.LotMultiplier = decimal.Zero
	compounding.RefreshConsumptions(formula)
	require.NoError(t, f.formulaRepo.Update(formula))

	_, err = f.uc.Submit(context.Background(), validSubmit(f.formulaID))
	require.ErrorIs(t, err, domain.ErrMissingConsumption)
	assert.True(t, dec("100").Equal(f.balance(t, "mat-epdm")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Submit — rollback atómico
// ──────────────────────────────────────────────────────────────────────────────

// failingTxRunner envuelve los repos de la transacción con un appendRepo que
// falla en el segundo asiento, simulando un fallo del libro mayor a mitad de
// deducción.
type failingTxRunner struct {
	inner    apporder.TxRunner
	failAt   int
	appended int
}

type failingEntryRepo struct {
	inner  repository.LedgerEntryRepository
	runner *failingTxRunner
}

var errDiskFull = errors.New("disco lleno")

func (r *failingEntryRepo) Append(e *entity.LedgerEntry) error {
	r.runner.appended++
	if r.runner.appended >= r.runner.failAt {
		return errDiskFull
	}
	return r.inner.Append(e)
}

func (r *failingEntryRepo) ListByMaterial(materialID string) ([]entity.LedgerEntry, error) {
	return r.inner.ListByMaterial(materialID)
}

func (r *failingTxRunner) RunOrder(ctx context.Context, fn func(
	matRepo repository.MaterialRepository,
	entryRepo repository.LedgerEntryRepository,
	orderRepo repository.OrderRepository,
) error) error {
	return r.inner.RunOrder(ctx, func(
		matRepo repository.MaterialRepository,
		entryRepo repository.LedgerEntryRepository,
		orderRepo repository.OrderRepository,
	) error {
		return fn(matRepo, &failingEntryRepo{inner: entryRepo, runner: r}, orderRepo)
	})
}

// Un fallo en la segunda deducción revierte también la primera: ningún
// balance queda modificado, no se persiste la orden y el error identifica al
// ingrediente culpable.
func TestSubmit_FalloAMitadDeDeduccionReviertTodo(t *testing.T) {
	f := newFixture(t)
	orderRepo := memory.NewOrderRepository(f.store)
	uc := apporder.NewSubmitOrderUseCase(
		&failingTxRunner{inner: memory.NewTxRunner(f.store), failAt: 2},
		f.formulaRepo,
		orderRepo,
		noopSheets{},
		testLogger(),
	)

	_, err := uc.Submit(context.Background(), validSubmit(f.formulaID))
	require.Error(t, err)

	var lf *domain.LedgerFailure
	require.ErrorAs(t, err, &lf)
	assert.ErrorIs(t, err, domain.ErrLedgerFailure)
	assert.NotEmpty(t, lf.Ingredient, "el fallo debe nombrar al ingrediente culpable")
	assert.ErrorIs(t, lf.Err, errDiskFull)

	// Rollback total: los balances vuelven al estado previo.
	assert.True(t, dec("100").Equal(f.balance(t, "mat-epdm")))
	assert.True(t, dec("50").Equal(f.balance(t, "mat-azufre")))

	// Y la orden no quedó persistida.
	orders, err := orderRepo.List()
	require.NoError(t, err)
	assert.Empty(t, orders)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests List / GetByID / GenerateSheet
// ──────────────────────────────────────────────────────────────────────────────

func TestList_IncluyeNombreDeFormula(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Submit(context.Background(), validSubmit(f.formulaID))
	require.NoError(t, err)

	out, err := f.uc.List()
	require.NoError(t, err)
	require.Equal(t, 1, out.Total)
	assert.Equal(t, "EPDM-60", out.Items[0].FormulaName)
	assert.Equal(t, "ORD-001", out.Items[0].OrderNo)
}

// El snapshot de consumo sobrevive a ediciones posteriores de la fórmula.
func TestGetByID_SnapshotInmutable(t *testing.T) {
	f := newFixture(t)
	created, err := f.uc.Submit(context.Background(), validSubmit(f.formulaID))
	require.NoError(t, err)

	formula, err := f.formulaRepo.GetByID(f.formulaID)
	require.NoError(t, err)
	formula.Ingredients[0].Ratio = dec("999")
	compounding.RefreshConsumptions(formula)
	require.NoError(t, f.formulaRepo.Update(formula))

	out, err := f.uc.GetByID(created.ID)
	require.NoError(t, err)
	assert.True(t, dec("200").Equal(out.Consumptions[0].Quantity),
		"la orden conserva las cantidades calculadas al momento del envío")
}

func TestGenerateSheet_OrdenInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.GenerateSheet(context.Background(), "no-existe")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerateSheet_DevuelveBytes(t *testing.T) {
	f := newFixture(t)
	created, err := f.uc.Submit(context.Background(), validSubmit(f.formulaID))
	require.NoError(t, err)

	sheet, err := f.uc.GenerateSheet(context.Background(), created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, sheet)
}

// La orden sobrevive al borrado de su fórmula; la hoja debe generarse desde
// el snapshot (con el generador real, que lee nombre e ingredientes de la
// fórmula).
func TestGenerateSheet_FormulaEliminada(t *testing.T) {
	f := newFixture(t)
	created, err := f.uc.Submit(context.Background(), validSubmit(f.formulaID))
	require.NoError(t, err)

	require.NoError(t, f.formulaRepo.Delete(f.formulaID))

	uc := apporder.NewSubmitOrderUseCase(
		memory.NewTxRunner(f.store),
		f.formulaRepo,
		memory.NewOrderRepository(f.store),
		infrapdf.NewMarotoSheetGenerator(),
		testLogger(),
	)
	sheet, err := uc.GenerateSheet(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(sheet, []byte("%PDF")), "la hoja debe ser un PDF")
}
