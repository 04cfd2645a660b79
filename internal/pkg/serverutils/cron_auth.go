package serverutils

import (
	"crypto/subtle"
	"strings"
	"time"

	"welcomeapp-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

const CronStartedAtKey = "cron_started_at"

// CronSecretMiddleware guards scheduler endpoints with a shared bearer secret.
// An unset secret is a server misconfiguration and answers 500, never 401.
func CronSecretMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		startedAt := time.Now()
		ctx.Locals(CronStartedAtKey, startedAt)

		if secret == "" {
			return ctx.Status(fiber.StatusInternalServerError).JSON(dto.CronFailureResponse{
				Success:         false,
				Error:           "CRON_SECRET is not configured",
				ExecutionTimeMs: time.Since(startedAt).Milliseconds(),
			})
		}

		token, ok := bearerToken(ctx.Get(fiber.HeaderAuthorization))
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			return ctx.Status(fiber.StatusUnauthorized).JSON(dto.CronFailureResponse{
				Success:         false,
				Error:           "Unauthorized",
				ExecutionTimeMs: time.Since(startedAt).Milliseconds(),
			})
		}

		return ctx.Next()
	}
}

// CronStartedAt returns when CronSecretMiddleware saw the request
func CronStartedAt(ctx *fiber.Ctx) time.Time {
	if t, ok := ctx.Locals(CronStartedAtKey).(time.Time); ok {
		return t
	}
	return time.Now()
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := header[len(prefix):]
	if token == "" {
		return "", false
	}
	return token, true
}
