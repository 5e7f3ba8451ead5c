package middleware

import (
	"context"

	"loan-backend/internal/adapters/cache"
	"loan-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// HeaderIdempotencyKey is the request header naming a retry-safe request
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotentReplay is set on responses served from the store
const HeaderIdempotentReplay = "Idempotent-Replayed"

// IdempotencyStore is implemented by cache.IdempotencyStore
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (bool, error)
	Lookup(ctx context.Context, key string) (int, *cache.StoredResponse, error)
	Complete(ctx context.Context, key string, resp *cache.StoredResponse) error
	Release(ctx context.Context, key string) error
}

// Idempotency replays the stored response of a request repeated with the same
// Idempotency-Key. Keys are scoped per operator, method and path. Requests
// without the header, or any request when store is nil, pass straight through.
// 5xx responses are not stored so the client may retry.
func Idempotency(store IdempotencyStore, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if store == nil || key == "" {
			return c.Next()
		}
		if len(key) > 255 {
			return response.BadRequest(c, "Idempotency-Key must be at most 255 characters")
		}

		ctx := c.UserContext()
		scoped := CurrentUsername(c) + ":" + c.Method() + ":" + c.Path() + ":" + key
		logger := log.WithField("idempotency_key", key)

		state, stored, err := store.Lookup(ctx, scoped)
		if err != nil {
			logger.WithError(err).Warn("Idempotency lookup failed, serving request without replay protection")
			return c.Next()
		}
		switch state {
		case cache.StateDone:
			c.Set(HeaderIdempotentReplay, "true")
			if stored.ContentType != "" {
				c.Set(fiber.HeaderContentType, stored.ContentType)
			}
			return c.Status(stored.Status).Send(stored.Body)
		case cache.StatePending:
			return response.Conflict(c, "A request with this Idempotency-Key is still in progress")
		}

		reserved, err := store.Reserve(ctx, scoped)
		if err != nil {
			logger.WithError(err).Warn("Idempotency reserve failed, serving request without replay protection")
			return c.Next()
		}
		if !reserved {
			return response.Conflict(c, "A request with this Idempotency-Key is still in progress")
		}

		defer func() {
			if r := recover(); r != nil {
				if err := store.Release(ctx, scoped); err != nil {
					logger.WithError(err).Warn("Failed to release idempotency key")
				}
				panic(r)
			}
		}()

		if err := c.Next(); err != nil {
			if releaseErr := store.Release(ctx, scoped); releaseErr != nil {
				logger.WithError(releaseErr).Warn("Failed to release idempotency key")
			}
			return err
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			if err := store.Release(ctx, scoped); err != nil {
				logger.WithError(err).Warn("Failed to release idempotency key")
			}
			return nil
		}

		body := append([]byte(nil), c.Response().Body()...)
		if err := store.Complete(ctx, scoped, &cache.StoredResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        body,
		}); err != nil {
			logger.WithError(err).Warn("Failed to store idempotent response")
		}
		return nil
	}
}
