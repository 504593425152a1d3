package repository

import "github.com/jhoicas/stock-ledger-api/internal/domain/entity"

// MovementFilter filtros para listar movimientos. LocationID coincide contra
// origen o destino. Cadenas vacías = sin filtro.
type MovementFilter struct {
	ProductID  string
	LocationID string
	Limit      int
	Offset     int
}

// MovementRepository define el puerto de persistencia para el log de movimientos.
// El log es append-only: no hay operación de actualización, solo Create y Delete.
type MovementRepository interface {
	Create(movement *entity.Movement) error
	GetByID(id string) (*entity.Movement, error)
	// List devuelve movimientos en orden estable de creación (seq ascendente).
	List(filter MovementFilter) ([]*entity.Movement, error)
	Delete(id string) error
	// DeleteByProduct borra todos los movimientos de un producto (cascada al borrarlo).
	DeleteByProduct(productID string) error
	// ExistsForLocation indica si algún movimiento referencia la ubicación (origen o destino).
	ExistsForLocation(locationID string) (bool, error)
}
