package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Compuestos-api/internal/application/dto"
	"github.com/jhoicas/Compuestos-api/internal/domain"
	"github.com/jhoicas/Compuestos-api/internal/domain/compounding"
	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
	"github.com/jhoicas/Compuestos-api/internal/domain/repository"
)

// FormulaUseCase casos de uso del catálogo de fórmulas. El consumption de
// cada ingrediente es un valor derivado cacheado: se recalcula en cada
// guardado (ratio × lotMultiplier) y nunca se confía en el valor del cliente.
type FormulaUseCase struct {
	repo repository.FormulaRepository
}

// NewFormulaUseCase construye el caso de uso.
func NewFormulaUseCase(repo repository.FormulaRepository) *FormulaUseCase {
	return &FormulaUseCase{repo: repo}
}

// Create crea una fórmula. Valida nombre único, ingredientes no vacíos con
// ratio positivo, y que totalWeight sea positivo e igual a la suma de ratios
// (los ratios están en la misma unidad de peso que totalWeight).
func (uc *FormulaUseCase) Create(in dto.CreateFormulaRequest) (*dto.FormulaResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validateIngredients(in.Ingredients); err != nil {
		return nil, err
	}
	if !in.TotalWeight.IsPositive() {
		return nil, domain.ErrInvalidIngredients
	}

	now := time.Now()
	formula := &entity.Formula{
		ID:            uuid.New().String(),
		Name:          name,
		LotMultiplier: in.LotMultiplier,
		Ingredients:   in.Ingredients,
		TotalWeight:   in.TotalWeight,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if !formula.TotalWeight.Equal(formula.IngredientTotal()) {
		return nil, domain.ErrInvalidIngredients
	}

	existing, err := uc.repo.GetByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	compounding.RefreshConsumptions(formula)
	if err := uc.repo.Create(formula); err != nil {
		return nil, err
	}
	return toFormulaResponse(formula), nil
}

// Update reemplaza nombre y lista de ingredientes, recalculando el
// consumption cacheado con el lotMultiplier existente. TotalWeight queda
// congelado al valor de creación y NO se revalida contra los nuevos
// ingredientes: inconsistencia conocida, heredada deliberadamente del proceso
// de planta (las hojas impresas referencian el peso declarado original).
func (uc *FormulaUseCase) Update(id string, in dto.UpdateFormulaRequest) (*dto.FormulaResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validateIngredients(in.Ingredients); err != nil {
		return nil, err
	}
	formula, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if formula == nil {
		return nil, domain.ErrNotFound
	}
	formula.Name = name
	formula.Ingredients = in.Ingredients
	formula.UpdatedAt = time.Now()
	compounding.RefreshConsumptions(formula)
	if err := uc.repo.Update(formula); err != nil {
		return nil, err
	}
	return toFormulaResponse(formula), nil
}

// Delete elimina una fórmula y la devuelve.
func (uc *FormulaUseCase) Delete(id string) (*dto.FormulaResponse, error) {
	formula, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if formula == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.repo.Delete(id); err != nil {
		return nil, err
	}
	return toFormulaResponse(formula), nil
}

// GetByID obtiene una fórmula por ID.
func (uc *FormulaUseCase) GetByID(id string) (*dto.FormulaResponse, error) {
	formula, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if formula == nil {
		return nil, domain.ErrNotFound
	}
	return toFormulaResponse(formula), nil
}

// List lista todas las fórmulas.
func (uc *FormulaUseCase) List() (*dto.FormulaListResponse, error) {
	list, err := uc.repo.List()
	if err != nil {
		return nil, err
	}
	items := make([]dto.FormulaResponse, 0, len(list))
	for _, f := range list {
		items = append(items, *toFormulaResponse(f))
	}
	return &dto.FormulaListResponse{Items: items, Total: len(items)}, nil
}

func validateIngredients(ingredients []entity.Ingredient) error {
	if len(ingredients) == 0 {
		return domain.ErrInvalidIngredients
	}
	for _, ing := range ingredients {
		if strings.TrimSpace(ing.Name) == "" || !ing.Ratio.IsPositive() {
			return domain.ErrInvalidIngredients
		}
	}
	return nil
}

func toFormulaResponse(f *entity.Formula) *dto.FormulaResponse {
	return &dto.FormulaResponse{
		ID:            f.ID,
		Name:          f.Name,
		LotMultiplier: f.LotMultiplier,
		Ingredients:   f.Ingredients,
		TotalWeight:   f.TotalWeight,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}
