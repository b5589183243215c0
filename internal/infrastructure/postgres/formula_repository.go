package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Compuestos-api/internal/domain"
	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
	"github.com/jhoicas/Compuestos-api/internal/domain/repository"
)

var _ repository.FormulaRepository = (*FormulaRepo)(nil)

// FormulaRepo implementación de FormulaRepository sobre PostgreSQL (usable
// con pool o tx). Los ingredientes se guardan como JSONB en la misma fila: la
// receta es un documento, no una relación (igual que los atributos libres de
// producto en otros módulos).
type FormulaRepo struct {
	q Querier
}

// NewFormulaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFormulaRepository(q Querier) *FormulaRepo {
	return &FormulaRepo{q: q}
}

// Create persiste una nueva fórmula.
func (r *FormulaRepo) Create(f *entity.Formula) error {
	ingredients, err := json.Marshal(f.Ingredients)
	if err != nil {
		return fmt.Errorf("marshal ingredients: %w", err)
	}
	query := `
		INSERT INTO formulas (id, name, lot_multiplier, ingredients, total_weight, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.q.Exec(context.Background(), query,
		f.ID, f.Name, f.LotMultiplier, ingredients, f.TotalWeight, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert formula: %w", err)
	}
	return nil
}

// GetByID obtiene una fórmula por ID.
func (r *FormulaRepo) GetByID(id string) (*entity.Formula, error) {
	return r.getOne(`WHERE id = $1`, id)
}

// GetByName obtiene una fórmula por nombre (único).
func (r *FormulaRepo) GetByName(name string) (*entity.Formula, error) {
	return r.getOne(`WHERE name = $1`, name)
}

func (r *FormulaRepo) getOne(where string, arg any) (*entity.Formula, error) {
	query := `
		SELECT id, name, lot_multiplier, ingredients, total_weight, created_at, updated_at
		FROM formulas ` + where
	var f entity.Formula
	var ingredients []byte
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&f.ID, &f.Name, &f.LotMultiplier, &ingredients, &f.TotalWeight, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get formula: %w", err)
	}
	if err := json.Unmarshal(ingredients, &f.Ingredients); err != nil {
		return nil, fmt.Errorf("unmarshal ingredients: %w", err)
	}
	return &f, nil
}

// Update reemplaza nombre e ingredientes (y el consumption recalculado).
// total_weight no se toca: queda congelado al valor de creación.
func (r *FormulaRepo) Update(f *entity.Formula) error {
	ingredients, err := json.Marshal(f.Ingredients)
	if err != nil {
		return fmt.Errorf("marshal ingredients: %w", err)
	}
	query := `
		UPDATE formulas SET name = $2, ingredients = $3, updated_at = $4
		WHERE id = $1`
	_, err = r.q.Exec(context.Background(), query, f.ID, f.Name, ingredients, f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update formula: %w", err)
	}
	return nil
}

// Delete elimina una fórmula por ID.
func (r *FormulaRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM formulas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete formula: %w", err)
	}
	return nil
}

// List lista todas las fórmulas en orden de creación.
func (r *FormulaRepo) List() ([]*entity.Formula, error) {
	query := `
		SELECT id, name, lot_multiplier, ingredients, total_weight, created_at, updated_at
		FROM formulas ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list formulas: %w", err)
	}
	defer rows.Close()
	var list []*entity.Formula
	for rows.Next() {
		var f entity.Formula
		var ingredients []byte
		if err := rows.Scan(&f.ID, &f.Name, &f.LotMultiplier, &ingredients, &f.TotalWeight, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan formula: %w", err)
		}
		if err := json.Unmarshal(ingredients, &f.Ingredients); err != nil {
			return nil, fmt.Errorf("unmarshal ingredients: %w", err)
		}
		list = append(list, &f)
	}
	return list, rows.Err()
}

// ReferencesMaterial indica si alguna fórmula contiene un ingrediente con ese
// nombre (vínculo débil por nombre, consulta JSONB).
func (r *FormulaRepo) ReferencesMaterial(materialName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM formulas f, jsonb_array_elements(f.ingredients) ing
			WHERE ing->>'name' = $1
		)`
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, materialName).Scan(&exists); err != nil {
		return false, fmt.Errorf("check formula references: %w", err)
	}
	return exists, nil
}
