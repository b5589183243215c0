package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compuestos-api/internal/domain"
	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
	"github.com/jhoicas/Compuestos-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo implementación del puerto MaterialRepository sobre PostgreSQL (usable con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

const materialColumns = `id, name, category, unit, balance, created_at, updated_at`

// Create persiste un nuevo material. Balance inicia en el valor que traiga la
// entidad (0 salvo siembra de apertura dentro de la misma tx).
func (r *MaterialRepo) Create(m *entity.Material) error {
	query := `
		INSERT INTO materials (id, name, category, unit, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.Name, m.Category, m.Unit, m.Balance, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

// GetByID obtiene un material por ID.
func (r *MaterialRepo) GetByID(id string) (*entity.Material, error) {
	return r.getOne(`SELECT `+materialColumns+` FROM materials WHERE id = $1`, id)
}

// GetByName resuelve el vínculo débil ingrediente→material por nombre.
func (r *MaterialRepo) GetByName(name string) (*entity.Material, error) {
	return r.getOne(`SELECT `+materialColumns+` FROM materials WHERE name = $1`, name)
}

// GetForUpdate obtiene el material y bloquea su fila (SELECT FOR UPDATE) para
// serializar las transacciones concurrentes sobre el mismo material.
func (r *MaterialRepo) GetForUpdate(id string) (*entity.Material, error) {
	return r.getOne(`SELECT `+materialColumns+` FROM materials WHERE id = $1 FOR UPDATE`, id)
}

func (r *MaterialRepo) getOne(query string, arg any) (*entity.Material, error) {
	var m entity.Material
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&m.ID, &m.Name, &m.Category, &m.Unit, &m.Balance, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return &m, nil
}

// Update actualiza campos descriptivos. El balance no se toca por esta vía
// (se maneja vía UpdateBalance desde el motor del libro mayor).
func (r *MaterialRepo) Update(m *entity.Material) error {
	query := `
		UPDATE materials SET name = $2, category = $3, unit = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.Name, m.Category, m.Unit, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update material: %w", err)
	}
	return nil
}

// UpdateBalance actualiza solo el balance cacheado (usado por el motor del
// libro mayor dentro de una transacción con la fila bloqueada).
func (r *MaterialRepo) UpdateBalance(id string, balance decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE materials SET balance = $2, updated_at = now() WHERE id = $1`,
		id, balance,
	)
	if err != nil {
		return fmt.Errorf("update material balance: %w", err)
	}
	return nil
}

// List lista materiales en orden de inserción en el catálogo; category vacío
// lista todos.
func (r *MaterialRepo) List(category string) ([]*entity.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials ORDER BY created_at ASC`
	args := []any{}
	if category != "" {
		query = `SELECT ` + materialColumns + ` FROM materials WHERE category = $1 ORDER BY created_at ASC`
		args = append(args, category)
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		var m entity.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.Unit, &m.Balance, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// Delete elimina un material por ID. La verificación de referencias desde
// fórmulas la hace el caso de uso.
func (r *MaterialRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	return nil
}
