package entity

import "time"

// Location representa una ubicación física donde se almacena stock (bodega, punto de venta).
// El ID lo asigna el cliente al crearla y es la clave que referencian los movimientos.
type Location struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
