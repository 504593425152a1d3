package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación de la tabla materializada de balances sobre PostgreSQL
// (usable con pool o tx). Dentro de transacciones garantiza el par indivisible
// movimiento + delta de balance.
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// Get obtiene el balance de un producto en una ubicación. Sin fila = balance cero.
func (r *BalanceRepo) Get(productID, locationID string) (*entity.Balance, error) {
	query := `
		SELECT product_id, location_id, quantity, updated_at
		FROM balances WHERE product_id = $1 AND location_id = $2`
	var b entity.Balance
	err := r.q.QueryRow(context.Background(), query, productID, locationID).Scan(
		&b.ProductID, &b.LocationID, &b.Quantity, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Balance{ProductID: productID, LocationID: locationID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

// GetForUpdate obtiene el balance y bloquea la fila (SELECT FOR UPDATE): serializa
// débitos concurrentes sobre el mismo par (producto, ubicación). Sin fila = balance cero
// (no hay nada que bloquear: un débito contra cero falla en el caso de uso).
func (r *BalanceRepo) GetForUpdate(productID, locationID string) (*entity.Balance, error) {
	query := `
		SELECT product_id, location_id, quantity, updated_at
		FROM balances WHERE product_id = $1 AND location_id = $2
		FOR UPDATE`
	var b entity.Balance
	err := r.q.QueryRow(context.Background(), query, productID, locationID).Scan(
		&b.ProductID, &b.LocationID, &b.Quantity, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Balance{ProductID: productID, LocationID: locationID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return &b, nil
}

// ApplyDelta suma delta (con signo) al balance, creando la fila si no existe.
// El upsert es aditivo (quantity = quantity + delta) para que dos transacciones
// concurrentes sobre el mismo par nunca se pierdan actualizaciones.
func (r *BalanceRepo) ApplyDelta(productID, locationID string, delta decimal.Decimal) error {
	query := `
		INSERT INTO balances (product_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET quantity = balances.quantity + EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, productID, locationID, delta)
	if err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}
	return nil
}

// ListByProduct lista los balances de un producto en todas las ubicaciones.
func (r *BalanceRepo) ListByProduct(productID string) ([]*entity.Balance, error) {
	query := `
		SELECT product_id, location_id, quantity, updated_at
		FROM balances WHERE product_id = $1 ORDER BY location_id`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()
	var list []*entity.Balance
	for rows.Next() {
		var b entity.Balance
		if err := rows.Scan(&b.ProductID, &b.LocationID, &b.Quantity, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// DeleteByProduct elimina los balances de un producto (cascada del borrado de producto).
func (r *BalanceRepo) DeleteByProduct(productID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM balances WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete balances by product: %w", err)
	}
	return nil
}
