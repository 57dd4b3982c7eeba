package cache

import (
	"context"

	"github.com/jhoicas/Invoicer-api/pkg/logger"
)

// NewIdempotencyStore elige Redis si hay dirección configurada y responde; si no,
// cae al store en memoria con un aviso (no comparte estado entre instancias).
func NewIdempotencyStore(ctx context.Context, cfg RedisConfig, log *logger.Logger) IdempotencyStore {
	if cfg.Addr == "" {
		log.Info().Msg("idempotencia en memoria (REDIS_ADDR vacío)")
		return NewInMemoryIdempotencyStore()
	}
	store, err := NewRedisIdempotencyStore(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Redis no disponible, idempotencia en memoria")
		return NewInMemoryIdempotencyStore()
	}
	log.Info().Str("addr", cfg.Addr).Msg("idempotencia en Redis")
	return store
}
