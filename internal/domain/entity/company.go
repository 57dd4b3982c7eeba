package entity

import "time"

// Company representa un perfil de facturación de un usuario (emisor de las facturas).
// OwnerID no cambia después de la creación.
type Company struct {
	ID        string
	OwnerID   string
	Name      string
	GSTIN     string // identificación tributaria opcional
	Website   string
	Address   string
	Mobile    string
	Email     string
	Logo      string // referencia al logo (URL o data URI); vacío = sin logo
	CreatedAt time.Time
	UpdatedAt time.Time
}
