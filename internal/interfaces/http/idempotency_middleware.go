package http

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Invoicer-api/internal/application/dto"
	"github.com/jhoicas/Invoicer-api/internal/infrastructure/cache"
	"github.com/jhoicas/Invoicer-api/pkg/logger"
)

// HeaderIdempotencyKey cabecera con la que el cliente marca un reintento seguro.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotentReplay se añade cuando la respuesta sale del store y no del handler.
const HeaderIdempotentReplay = "Idempotent-Replayed"

// RequireIdempotency devuelve un middleware que hace idempotente el handler siguiente
// cuando la petición trae Idempotency-Key. Debe usarse DESPUÉS de AuthMiddleware:
// la clave se acota al usuario.
//
// Comportamiento:
//   - Sin cabecera → pasa directo.
//   - Clave ya completada con el mismo body → repite la respuesta guardada.
//   - Clave ya completada con otro body → 422 IDEMPOTENCY_KEY_REUSED.
//   - Clave en curso → 409 IDEMPOTENCY_IN_PROGRESS.
//   - Respuesta ≥ 400 → libera la clave para que el cliente pueda reintentar.
//   - Fallo del store → 503.
func RequireIdempotency(store cache.IdempotencyStore, ttl time.Duration, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" {
			return c.Next()
		}
		if len(key) > 255 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado larga"})
		}
		ctx := c.UserContext()
		scoped := GetUserID(c) + ":" + c.Method() + ":" + c.Route().Path + ":" + key

		if saved, err := store.Lookup(ctx, scoped); err != nil {
			return storeUnavailable(c, log, err)
		} else if saved != nil {
			if saved.RequestHash != "" && saved.RequestHash != requestHash(c) {
				return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
					Code:    "IDEMPOTENCY_KEY_REUSED",
					Message: "la Idempotency-Key ya se usó con otro cuerpo de petición",
				})
			}
			c.Set(HeaderIdempotentReplay, "true")
			if saved.ContentType != "" {
				c.Set(fiber.HeaderContentType, saved.ContentType)
			}
			return c.Status(saved.Status).Send(saved.Body)
		}

		reserved, err := store.Reserve(ctx, scoped, ttl)
		if err != nil {
			return storeUnavailable(c, log, err)
		}
		if !reserved {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Code:    "IDEMPOTENCY_IN_PROGRESS",
				Message: "ya hay una petición en curso con esa Idempotency-Key",
			})
		}

		if err := c.Next(); err != nil {
			if relErr := store.Release(ctx, scoped); relErr != nil {
				log.Warn().Err(relErr).Msg("no se pudo liberar la clave de idempotencia")
			}
			return err
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusBadRequest {
			if err := store.Release(ctx, scoped); err != nil {
				log.Warn().Err(err).Msg("no se pudo liberar la clave de idempotencia")
			}
			return nil
		}
		resp := cache.Response{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
			RequestHash: requestHash(c),
		}
		if err := store.Complete(ctx, scoped, resp, ttl); err != nil {
			log.Warn().Err(err).Msg("no se pudo guardar la respuesta idempotente")
		}
		return nil
	}
}

func storeUnavailable(c *fiber.Ctx, log *logger.Logger, err error) error {
	log.Error().Err(err).Msg("store de idempotencia no disponible")
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
		Code:    "IDEMPOTENCY_UNAVAILABLE",
		Message: "no se pudo verificar la Idempotency-Key, intente más tarde",
	})
}

// requestHash huella SHA-256 del body recibido.
func requestHash(c *fiber.Ctx) string {
	sum := sha256.Sum256(c.Body())
	return hex.EncodeToString(sum[:])
}
