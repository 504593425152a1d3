package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del log de movimientos sobre PostgreSQL (usable con pool o tx).
// El log es append-only: solo INSERT y DELETE, nunca UPDATE.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento. La base asigna seq (BIGSERIAL) y se lee de vuelta
// para que el orden de creación sea observable por el caller.
func (r *MovementRepo) Create(movement *entity.Movement) error {
	query := `
		INSERT INTO movements (id, product_id, from_location, to_location, qty, kind, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	err := r.q.QueryRow(context.Background(), query,
		movement.ID, movement.ProductID, movement.FromLocation, movement.ToLocation,
		movement.Quantity, movement.Kind, movement.CreatedAt, createdBy,
	).Scan(&movement.Seq)
	if err != nil {
		if mapped := movementFKError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// movementFKError traduce violaciones de FK del insert a errores de dominio.
// La validación resuelve producto y ubicaciones antes de abrir la transacción;
// si alguno se borra en esa ventana, el insert es quien lo detecta.
func movementFKError(err error) error {
	switch fkConstraint(err) {
	case "movements_product_id_fkey":
		return domain.ErrUnknownProduct
	case "movements_from_location_fkey", "movements_to_location_fkey":
		return domain.ErrUnknownLocation
	}
	return nil
}

const movementColumns = `id, seq, product_id, from_location, to_location, qty, kind, created_at, created_by`

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var createdBy *string
	err := row.Scan(&m.ID, &m.Seq, &m.ProductID, &m.FromLocation, &m.ToLocation,
		&m.Quantity, &m.Kind, &m.CreatedAt, &createdBy)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}

// GetByID obtiene un movimiento por ID (nil si no existe).
func (r *MovementRepo) GetByID(id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// List lista movimientos en orden estable de creación (seq ascendente), con filtros
// opcionales por producto y por ubicación (origen o destino).
func (r *MovementRepo) List(filter repository.MovementFilter) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.LocationID != "" {
		query += fmt.Sprintf(" AND (from_location = $%d OR to_location = $%d)", pos, pos)
		args = append(args, filter.LocationID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY seq LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Delete elimina un movimiento por ID (hard delete; la reversa de balance la hace el caso de uso).
func (r *MovementRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	return nil
}

// DeleteByProduct elimina todos los movimientos de un producto (cascada del borrado de producto).
func (r *MovementRepo) DeleteByProduct(productID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM movements WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete movements by product: %w", err)
	}
	return nil
}

// ExistsForLocation indica si algún movimiento referencia la ubicación (origen o destino).
func (r *MovementRepo) ExistsForLocation(locationID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM movements WHERE from_location = $1 OR to_location = $1)`
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, locationID).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists movements for location: %w", err)
	}
	return exists, nil
}
