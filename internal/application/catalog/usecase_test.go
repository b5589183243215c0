package catalog_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compuestos-api/internal/application/catalog"
	"github.com/jhoicas/Compuestos-api/internal/application/dto"
	"github.com/jhoicas/Compuestos-api/internal/domain"
	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
	"github.com/jhoicas/Compuestos-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newUseCase() *catalog.FormulaUseCase {
	store := memory.NewStore()
	return catalog.NewFormulaUseCase(memory.NewFormulaRepository(store))
}

func validRequest() dto.CreateFormulaRequest {
	return dto.CreateFormulaRequest{
		Name:          "SBR-1502",
		LotMultiplier: dec("2"),
		Ingredients: []entity.Ingredient{
			{Type: entity.CategoryRubber, Name: "SBR", Ratio: dec("100")},
			{Type: entity.CategoryChemical, Name: "Óxido de zinc", Ratio: dec("5")},
			{Type: entity.CategoryChemical, Name: "Azufre", Ratio: dec("2.5")},
		},
		TotalWeight: dec("107.5"),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_FormulaValida(t *testing.T) {
	uc := newUseCase()

	out, err := uc.Create(validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "SBR-1502", out.Name)

	// El consumo cacheado se calcula en el servidor: ratio × lotMultiplier.
	require.NotNil(t, out.Ingredients[0].Consumption)
	assert.True(t, dec("200").Equal(*out.Ingredients[0].Consumption))
	assert.True(t, dec("10").Equal(*out.Ingredients[1].Consumption))
	assert.True(t, dec("5").Equal(*out.Ingredients[2].Consumption))
}

func TestCreate_NombreDuplicado(t *testing.T) {
	uc := newUseCase()

	_, err := uc.Create(validRequest())
	require.NoError(t, err)

	_, err = uc.Create(validRequest())
	require.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreate_NombreVacio(t *testing.T) {
	uc := newUseCase()
	in := validRequest()
	in.Name = "   "

	_, err := uc.Create(in)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_IngredientesInvalidos(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*dto.CreateFormulaRequest)
	}{
		{"sin ingredientes", func(in *dto.CreateFormulaRequest) {
			in.Ingredients = nil
		}},
		{"ingrediente sin nombre", func(in *dto.CreateFormulaRequest) {
			in.Ingredients[0].Name = " "
		}},
		{"ratio cero", func(in *dto.CreateFormulaRequest) {
			in.Ingredients[1].Ratio = decimal.Zero
		}},
		{"ratio negativo", func(in *dto.CreateFormulaRequest) {
			in.Ingredients[1].Ratio = dec("-5")
		}},
		{"totalWeight cero", func(in *dto.CreateFormulaRequest) {
			in.TotalWeight = decimal.Zero
		}},
		{"totalWeight distinto a la suma de ratios", func(in *dto.CreateFormulaRequest) {
			in.TotalWeight = dec("999")
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := newUseCase()
			in := validRequest()
			tc.mutate(&in)

			_, err := uc.Create(in)
			require.ErrorIs(t, err, domain.ErrInvalidIngredients)
		})
	}
}

// Con lotMultiplier cero la fórmula se guarda pero sin consumo cacheado; el
// planner la rechazará hasta que se corrija el multiplicador.
func TestCreate_MultiplicadorCeroGuardaSinConsumo(t *testing.T) {
	uc := newUseCase()
	in := validRequest()
	in.LotMultiplier = decimal.Zero

	out, err := uc.Create(in)
	require.NoError(t, err)
	for _, ing := range out.Ingredients {
		assert.Nil(t, ing.Consumption)
	}
}

// El consumption enviado por el cliente se ignora y se recalcula.
func TestCreate_IgnoraConsumoDelCliente(t *testing.T) {
	uc := newUseCase()
	in := validRequest()
	bogus := dec("12345")
	in.Ingredients[0].Consumption = &bogus

	out, err := uc.Create(in)
	require.NoError(t, err)
	assert.True(t, dec("200").Equal(*out.Ingredients[0].Consumption),
		"el consumo debe recalcularse en el servidor")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Update
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_ReemplazaIngredientesYRecalculaConsumo(t *testing.T) {
	uc := newUseCase()
	created, err := uc.Create(validRequest())
	require.NoError(t, err)

	out, err := uc.Update(created.ID, dto.UpdateFormulaRequest{
		Name: "SBR-1502-B",
		Ingredients: []entity.Ingredient{
			{Type: entity.CategoryRubber, Name: "SBR", Ratio: dec("90")},
			{Type: entity.CategoryChemical, Name: "Azufre", Ratio: dec("3")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "SBR-1502-B", out.Name)
	require.Len(t, out.Ingredients, 2)
	assert.True(t, dec("180").Equal(*out.Ingredients[0].Consumption),
		"el consumo se recalcula con el lotMultiplier existente")
	assert.True(t, dec("6").Equal(*out.Ingredients[1].Consumption))
}

// totalWeight queda congelado al valor de creación aunque los nuevos
// ingredientes sumen distinto.
func TestUpdate_TotalWeightCongelado(t *testing.T) {
	uc := newUseCase()
	created, err := uc.Create(validRequest())
	require.NoError(t, err)

	out, err := uc.Update(created.ID, dto.UpdateFormulaRequest{
		Name: created.Name,
		Ingredients: []entity.Ingredient{
			{Type: entity.CategoryRubber, Name: "SBR", Ratio: dec("42")},
		},
	})
	require.NoError(t, err)
	assert.True(t, dec("107.5").Equal(out.TotalWeight),
		"totalWeight no se revalida ni se recalcula en update")
}

func TestUpdate_FormulaInexistente(t *testing.T) {
	uc := newUseCase()

	_, err := uc.Update("no-existe", dto.UpdateFormulaRequest{
		Name: "X",
		Ingredients: []entity.Ingredient{
			{Type: entity.CategoryRubber, Name: "SBR", Ratio: dec("1")},
		},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Delete / GetByID / List
// ──────────────────────────────────────────────────────────────────────────────

func TestDelete_DevuelveLaFormulaEliminada(t *testing.T) {
	uc := newUseCase()
	created, err := uc.Create(validRequest())
	require.NoError(t, err)

	out, err := uc.Delete(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, out.ID)

	_, err = uc.GetByID(created.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_OrdenDeInsercion(t *testing.T) {
	uc := newUseCase()

	first := validRequest()
	_, err := uc.Create(first)
	require.NoError(t, err)

	second := validRequest()
	second.Name = "NBR-70"
	_, err = uc.Create(second)
	require.NoError(t, err)

	out, err := uc.List()
	require.NoError(t, err)
	require.Equal(t, 2, out.Total)
	assert.Equal(t, "SBR-1502", out.Items[0].Name)
	assert.Equal(t, "NBR-70", out.Items[1].Name)
}
