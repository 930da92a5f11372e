package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/ujian-go-api/internal/utils"
)

// JWTProtected returns a middleware that validates the bearer JWT issued by
// the teacher login. It gates the proctor, admin and seed surfaces.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		subject, role, err := ParseAccessToken(secret, tokenString)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals("teacher_id", subject)
		c.Locals("user_role", role)

		return c.Next()
	}
}

// ParseAccessToken verifies the signature and expiry of an access token and
// returns its subject and role claims. Also used by the realtime handshake,
// where the credential arrives as a query parameter instead of a header.
func ParseAccessToken(secret, tokenString string) (string, string, error) {
	if tokenString == "" {
		return "", "", fmt.Errorf("empty token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("invalid token claims")
	}

	subject := ""
	if value, ok := claims["sub"].(string); ok {
		subject = value
	}
	role := ""
	if value, ok := claims["role"].(string); ok {
		role = strings.ToLower(strings.TrimSpace(value))
	}
	if subject == "" || role == "" {
		return "", "", fmt.Errorf("missing token claims")
	}

	return subject, role, nil
}
