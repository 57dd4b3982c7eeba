package entity

import "time"

// User representa una cuenta del sistema. Es el límite de tenencia: empresas y facturas
// pertenecen siempre a un User.
type User struct {
	ID           string
	Name         string
	Email        string // normalizado: sin espacios y en minúsculas
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
