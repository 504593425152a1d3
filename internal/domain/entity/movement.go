package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento. El kind lo deriva el servidor, nunca lo envía el cliente:
// SEED solo se crea al dar de alta un producto con ubicación inicial y cantidad > 0.
const (
	MovementKindSEED     = "SEED"     // alta automática de stock inicial
	MovementKindIN       = "IN"       // entrada externa (from = null)
	MovementKindOUT      = "OUT"      // salida externa (to = null)
	MovementKindTRANSFER = "TRANSFER" // traslado entre ubicaciones
)

// Movement representa un movimiento inmutable del ledger. FromLocation/ToLocation en nil
// significan entrada/salida externa del sistema. Seq es asignado por la base (BIGSERIAL)
// y hace observable el orden de creación; no existe operación de edición, solo borrado
// con reversa de balance.
type Movement struct {
	ID           string // UUID asignado por el servidor
	Seq          int64  // orden de creación, monótono creciente
	ProductID    string
	FromLocation *string
	ToLocation   *string
	Quantity     decimal.Decimal // siempre > 0; el signo lo da from/to
	Kind         string
	CreatedAt    time.Time
	CreatedBy    string // usuario que originó el movimiento (o el alta del producto)
}
