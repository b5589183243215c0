package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
	"github.com/jhoicas/Compuestos-api/internal/domain/repository"
)

var _ repository.LedgerEntryRepository = (*LedgerEntryRepo)(nil)

// LedgerEntryRepo implementación de LedgerEntryRepository sobre PostgreSQL
// (usable con pool o tx). La tabla es append-only: este adaptador no tiene
// UPDATE ni DELETE y no debe tenerlos.
type LedgerEntryRepo struct {
	q Querier
}

// NewLedgerEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerEntryRepository(q Querier) *LedgerEntryRepo {
	return &LedgerEntryRepo{q: q}
}

// Append registra un asiento al final del historial del material.
func (r *LedgerEntryRepo) Append(e *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, material_id, date, particulars, inward, outward, balance, remarks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.MaterialID, e.Date, e.Particulars, e.Inward, e.Outward, e.Balance, e.Remarks, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByMaterial devuelve el historial completo en orden de inserción.
func (r *LedgerEntryRepo) ListByMaterial(materialID string) ([]entity.LedgerEntry, error) {
	query := `
		SELECT id, material_id, date, particulars, inward, outward, balance, remarks, created_at
		FROM ledger_entries WHERE material_id = $1 ORDER BY seq ASC`
	rows, err := r.q.Query(context.Background(), query, materialID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(&e.ID, &e.MaterialID, &e.Date, &e.Particulars, &e.Inward, &e.Outward, &e.Balance, &e.Remarks, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
