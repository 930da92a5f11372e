package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type correlationIDKey struct{}

var correlationKey = correlationIDKey{}

// headerCandidates lists the request headers a caller may use to propagate an
// existing correlation identifier, in precedence order.
var headerCandidates = []string{"X-Correlation-ID", "X-Request-ID"}

// CorrelationID binds a correlation identifier to every request. Incoming
// identifiers are reused so exam clients and the realtime channel share one
// trail; requests without one get a fresh UUID.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := incomingCorrelationID(c)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals("correlation_id", id)
		c.Set("X-Correlation-ID", id)
		c.SetUserContext(context.WithValue(c.Context(), correlationKey, id))

		return c.Next()
	}
}

func incomingCorrelationID(c *fiber.Ctx) string {
	for _, header := range headerCandidates {
		if id := strings.TrimSpace(c.Get(header)); id != "" {
			return id
		}
	}

	return ""
}

// CorrelationIDFromContext extracts the correlation identifier from context, if present.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(correlationKey).(string)

	return id
}

// GetCorrelationID returns the correlation identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}

	if id, ok := c.Locals("correlation_id").(string); ok && id != "" {
		return id
	}

	return CorrelationIDFromContext(c.Context())
}

// ContextWithCorrelation attaches the correlation identifier to the provided
// context. Blank identifiers leave the context untouched.
func ContextWithCorrelation(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	correlationID = strings.TrimSpace(correlationID)
	if correlationID == "" {
		return ctx
	}

	return context.WithValue(ctx, correlationKey, correlationID)
}
