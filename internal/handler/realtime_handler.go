package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ujian-go-api/internal/middleware"
	"github.com/noah-isme/ujian-go-api/internal/service"
)

var errRealtimeCredential = errors.New("realtime credential rejected")

// RealtimeHandler upgrades websocket connections onto the notification bus.
// Credentials ride in query parameters because browsers cannot set headers
// on a websocket handshake.
type RealtimeHandler struct {
	realtime  service.RealtimeService
	sessions  service.SessionService
	tokens    service.TokenService
	jwtSecret string
	logger    zerolog.Logger
}

// NewRealtimeHandler constructs the handler.
func NewRealtimeHandler(realtime service.RealtimeService, sessions service.SessionService, tokens service.TokenService, jwtSecret string, logger zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		realtime:  realtime,
		sessions:  sessions,
		tokens:    tokens,
		jwtSecret: jwtSecret,
		logger:    logger.With().Str("component", "realtime_handler").Logger(),
	}
}

// Register binds the websocket route.
func (h *RealtimeHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
			c.Locals("request_ctx", ctx)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
}

// handleConnection authenticates the subscriber before it joins any room.
// An invalid credential is the only condition that closes the channel here;
// a ban later in the session does not.
func (h *RealtimeHandler) handleConnection(conn *websocket.Conn) {
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	identity, admin, err := h.authenticate(baseCtx, conn)
	if err != nil {
		h.logger.Warn().Err(err).Msg("realtime credential rejected")
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid credential"))
		_ = conn.Close()
		return
	}

	h.logger.Info().Str("identity", identity).Bool("admin", admin).Msg("realtime client connected")
	h.realtime.ServeConnection(conn, service.ConnectionOptions{
		Identity: identity,
		Admin:    admin,
		Context:  baseCtx,
	})
	h.logger.Info().Str("identity", identity).Msg("realtime client disconnected")
}

func (h *RealtimeHandler) authenticate(ctx context.Context, conn *websocket.Conn) (string, bool, error) {
	if accessToken := strings.TrimSpace(conn.Query("access_token")); accessToken != "" {
		_, role, err := middleware.ParseAccessToken(h.jwtSecret, accessToken)
		if err != nil {
			return "", false, err
		}
		if role != "teacher" {
			return "", false, errRealtimeCredential
		}
		return service.AdminsRoom, true, nil
	}

	nis := strings.TrimSpace(conn.Query("nis"))
	if sessionHash := strings.TrimSpace(conn.Query("session_hash")); sessionHash != "" {
		if err := h.sessions.VerifyCredential(ctx, nis, sessionHash); err != nil {
			return "", false, err
		}
		return nis, false, nil
	}

	token := strings.TrimSpace(conn.Query("token"))
	room := strings.TrimSpace(conn.Query("room"))
	if nis == "" || token == "" {
		return "", false, errRealtimeCredential
	}
	if _, err := h.tokens.Validate(ctx, token, room); err != nil {
		return "", false, err
	}
	return nis, false, nil
}
