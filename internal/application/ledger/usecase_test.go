package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compuestos-api/internal/application/dto"
	appledger "github.com/jhoicas/Compuestos-api/internal/application/ledger"
	"github.com/jhoicas/Compuestos-api/internal/domain"
	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
	domledger "github.com/jhoicas/Compuestos-api/internal/domain/ledger"
	"github.com/jhoicas/Compuestos-api/internal/infrastructure/excel"
	"github.com/jhoicas/Compuestos-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	uc    *appledger.LedgerUseCase
	store *memory.Store
}

func newFixture() *fixture {
	store := memory.NewStore()
	uc := appledger.NewLedgerUseCase(
		memory.NewTxRunner(store),
		memory.NewMaterialRepository(store),
		memory.NewLedgerEntryRepository(store),
		memory.NewFormulaRepository(store),
		excel.NewStockBookExporter(),
	)
	return &fixture{uc: uc, store: store}
}

func (f *fixture) createMaterial(t *testing.T, name, opening string) *dto.MaterialResponse {
	t.Helper()
	out, err := f.uc.CreateMaterial(context.Background(), dto.CreateMaterialRequest{
		Name:           name,
		Category:       entity.CategoryRubber,
		OpeningBalance: dec(opening),
	})
	require.NoError(t, err)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests CreateMaterial
// ──────────────────────────────────────────────────────────────────────────────

// Un openingBalance positivo siembra el historial con "Opening stock".
func TestCreateMaterial_SiembraOpeningStock(t *testing.T) {
	f := newFixture()
	m := f.createMaterial(t, "EPDM", "100")
	assert.True(t, dec("100").Equal(m.Balance))

	detail, err := f.uc.GetMaterial(m.ID)
	require.NoError(t, err)
	require.Len(t, detail.Logs, 1)
	assert.Equal(t, "Opening stock", detail.Logs[0].Particulars)
	assert.True(t, dec("100").Equal(detail.Logs[0].Inward))
	assert.True(t, dec("100").Equal(detail.Logs[0].Balance))
}

// Sin opening balance el material nace con historial vacío y balance cero.
func TestCreateMaterial_SinOpeningBalance(t *testing.T) {
	f := newFixture()
	m := f.createMaterial(t, "EPDM", "0")
	assert.True(t, m.Balance.IsZero())

	detail, err := f.uc.GetMaterial(m.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Logs)
}

func TestCreateMaterial_NombreDuplicado(t *testing.T) {
	f := newFixture()
	f.createMaterial(t, "EPDM", "0")

	_, err := f.uc.CreateMaterial(context.Background(), dto.CreateMaterialRequest{Name: "EPDM"})
	require.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateMaterial_OpeningNegativoRechazado(t *testing.T) {
	f := newFixture()

	_, err := f.uc.CreateMaterial(context.Background(), dto.CreateMaterialRequest{
		Name:           "EPDM",
		OpeningBalance: dec("-1"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Record
// ──────────────────────────────────────────────────────────────────────────────

// Una salida de 30 sobre balance 100 deja 70: el asiento encadena con el
// historial y el balance cacheado se mueve en la misma transacción.
func TestRecord_SalidaEncadenaBalance(t *testing.T) {
	f := newFixture()
	m := f.createMaterial(t, "EPDM", "100")

	out, err := f.uc.Record(context.Background(), m.ID, dto.RecordTransactionRequest{
		Particulars: "Consumo de planta",
		Outward:     dec("30"),
	})
	require.NoError(t, err)
	assert.True(t, dec("70").Equal(out.Balance))

	balance, err := f.uc.GetBalance(m.ID)
	require.NoError(t, err)
	assert.True(t, dec("70").Equal(balance))
}

// El libro mayor no impone piso: la salida puede dejar balance negativo.
func TestRecord_PermiteBalanceNegativo(t *testing.T) {
	f := newFixture()
	m := f.createMaterial(t, "EPDM", "10")

	out, err := f.uc.Record(context.Background(), m.ID, dto.RecordTransactionRequest{
		Particulars: "Ajuste por merma",
		Outward:     dec("25"),
	})
	require.NoError(t, err)
	assert.True(t, dec("-15").Equal(out.Balance))
}

func TestRecord_TransaccionInvalida(t *testing.T) {
	f := newFixture()
	m := f.createMaterial(t, "EPDM", "100")

	cases := []struct {
		name string
		in   dto.RecordTransactionRequest
	}{
		{"sin particulars", dto.RecordTransactionRequest{Inward: dec("10")}},
		{"ambos cero", dto.RecordTransactionRequest{Particulars: "x"}},
		{"entrada negativa", dto.RecordTransactionRequest{Particulars: "x", Inward: dec("-1")}},
		{"salida negativa", dto.RecordTransactionRequest{Particulars: "x", Outward: dec("-1")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Record(context.Background(), m.ID, tc.in)
			require.ErrorIs(t, err, domain.ErrInvalidTransaction)
		})
	}

	// Nada de lo anterior debe haber tocado el balance.
	balance, err := f.uc.GetBalance(m.ID)
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(balance))
}

func TestRecord_MaterialInexistente(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Record(context.Background(), "no-existe", dto.RecordTransactionRequest{
		Particulars: "x",
		Inward:      dec("1"),
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// Transacciones concurrentes sobre el mismo material: cada asiento debe
// encadenar con el anterior y el balance final es opening + Σin − Σout.
func TestRecord_ConcurrenciaSerializada(t *testing.T) {
	f := newFixture()
	m := f.createMaterial(t, "EPDM", "50")

	var wg sync.WaitGroup
	movements := []dto.RecordTransactionRequest{
		{Particulars: "Salida 1", Outward: dec("10")},
		{Particulars: "Salida 2", Outward: dec("20")},
		{Particulars: "Entrada 1", Inward: dec("5")},
	}
	for _, in := range movements {
		wg.Add(1)
		go func(in dto.RecordTransactionRequest) {
			defer wg.Done()
			_, err := f.uc.Record(context.Background(), m.ID, in)
			assert.NoError(t, err)
		}(in)
	}
	wg.Wait()

	balance, err := f.uc.GetBalance(m.ID)
	require.NoError(t, err)
	assert.True(t, dec("25").Equal(balance), "50 − 10 − 20 + 5 = 25")

	// El historial completo debe pasar la auditoría de encadenamiento.
	history, err := f.uc.GetHistory(m.ID)
	require.NoError(t, err)
	require.Len(t, history, 4) // opening + 3 movimientos
	require.NoError(t, domledger.Reconcile(&entity.Material{ID: m.ID, Balance: balance}, history))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests UpdateMaterial / DeleteMaterial
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateMaterial_RenombreDuplicadoRechazado(t *testing.T) {
	f := newFixture()
	f.createMaterial(t, "EPDM", "0")
	m := f.createMaterial(t, "SBR", "0")

	name := "EPDM"
	_, err := f.uc.UpdateMaterial(m.ID, dto.UpdateMaterialRequest{Name: &name})
	require.ErrorIs(t, err, domain.ErrDuplicate)
}

// El update descriptivo nunca toca el balance.
func TestUpdateMaterial_NoTocaElBalance(t *testing.T) {
	f := newFixture()
	m := f.createMaterial(t, "EPDM", "100")

	cat := entity.CategoryChemical
	out, err := f.uc.UpdateMaterial(m.ID, dto.UpdateMaterialRequest{Category: &cat})
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(out.Balance))
}

func TestDeleteMaterial_ReferenciadoPorFormula(t *testing.T) {
	f := newFixture()
	m := f.createMaterial(t, "EPDM", "0")

	formulaRepo := memory.NewFormulaRepository(f.store)
	require.NoError(t, formulaRepo.Create(&entity.Formula{
		ID:            "f1",
		Name:          "EPDM-60",
		LotMultiplier: dec("1"),
		Ingredients: []entity.Ingredient{
			{Type: entity.CategoryRubber, Name: "EPDM", Ratio: dec("100")},
		},
		TotalWeight: dec("100"),
	}))

	err := f.uc.DeleteMaterial(m.ID)
	require.ErrorIs(t, err, domain.ErrConflict)

	// Sin la fórmula, el borrado procede.
	formulaRepo.Delete("f1")
	require.NoError(t, f.uc.DeleteMaterial(m.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ExportStockBook
// ──────────────────────────────────────────────────────────────────────────────

func TestExportStockBook_GeneraXlsx(t *testing.T) {
	f := newFixture()
	m := f.createMaterial(t, "EPDM", "100")
	_, err := f.uc.Record(context.Background(), m.ID, dto.RecordTransactionRequest{
		Particulars: "Consumo de planta",
		Outward:     dec("30"),
	})
	require.NoError(t, err)

	book, err := f.uc.ExportStockBook()
	require.NoError(t, err)
	require.NotEmpty(t, book)
	// Firma ZIP de un xlsx.
	assert.Equal(t, []byte{'P', 'K'}, book[:2])
}
