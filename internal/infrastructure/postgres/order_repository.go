package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
	"github.com/jhoicas/Compuestos-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con
// pool o tx). El snapshot de consumo se guarda como JSONB junto a la orden:
// es un registro de auditoría congelado al momento de la orden, no una
// relación viva.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, date, shift, order_no, machine_no, operator, batch_no,
		batch_weight, number_of_batches, remarks, formula_id, consumptions, created_at`

// Create persiste una orden con su snapshot de consumo. Las órdenes son
// inmutables: no hay Update ni Delete.
func (r *OrderRepo) Create(o *entity.Order) error {
	consumptions, err := json.Marshal(o.Consumptions)
	if err != nil {
		return fmt.Errorf("marshal consumptions: %w", err)
	}
	query := `
		INSERT INTO orders (id, date, shift, order_no, machine_no, operator, batch_no,
			batch_weight, number_of_batches, remarks, formula_id, consumptions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(context.Background(), query,
		o.ID, o.Date, o.Shift, o.OrderNo, o.MachineNo, o.Operator, o.BatchNo,
		o.BatchWeight, o.NumberOfBatches, o.Remarks, o.FormulaID, consumptions, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// List lista las órdenes más recientes primero.
func (r *OrderRepo) List() ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var consumptions []byte
	err := row.Scan(
		&o.ID, &o.Date, &o.Shift, &o.OrderNo, &o.MachineNo, &o.Operator, &o.BatchNo,
		&o.BatchWeight, &o.NumberOfBatches, &o.Remarks, &o.FormulaID, &consumptions, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(consumptions, &o.Consumptions); err != nil {
		return nil, fmt.Errorf("unmarshal consumptions: %w", err)
	}
	return &o, nil
}
