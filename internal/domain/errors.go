package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los mensajes detallados se construyen envolviendo el sentinel con fmt.Errorf("%w: ...").
var (
	ErrValidation   = errors.New("entrada inválida")
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
)
