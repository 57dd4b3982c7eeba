// Package cache guarda las claves Idempotency-Key de la creación de facturas,
// en memoria (una instancia) o en Redis (varias instancias).
package cache

import (
	"context"
	"time"
)

// Response respuesta HTTP guardada para repetirla ante un reintento con la misma clave.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
	// RequestHash huella del body original; un reintento con otro body no se repite.
	RequestHash string `json:"requestHash,omitempty"`
}

// IdempotencyStore reserva claves y recuerda la respuesta asociada durante ttl.
type IdempotencyStore interface {
	// Reserve reclama la clave de forma atómica. false si ya estaba reservada o completada.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Complete guarda la respuesta final de una clave reservada.
	Complete(ctx context.Context, key string, resp Response, ttl time.Duration) error
	// Lookup devuelve la respuesta guardada; nil si la clave no existe o sigue en curso.
	Lookup(ctx context.Context, key string) (*Response, error)
	// Release libera una reserva (la petición falló y puede reintentarse).
	Release(ctx context.Context, key string) error
	Close() error
}
