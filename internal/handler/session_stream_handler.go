package handler

import (
	"source-intel-be/internal/pkg/logger"
	internalWS "source-intel-be/internal/websocket"
	"source-intel-be/pkg/synthesis"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SessionStreamHandler upgrades clients that want a live feed of one session's decisions.
type SessionStreamHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewSessionStreamHandler(hub *internalWS.Hub, log logger.ILogger) *SessionStreamHandler {
	return &SessionStreamHandler{hub: hub, logger: log}
}

// ServeWs validates the session id before the handshake so bad ids get a plain 400.
func (h *SessionStreamHandler) ServeWs(c *fiber.Ctx) error {
	sessionID, err := synthesis.NormalizeSessionID(c.Params("id"))
	if err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("STREAM", "Session stream opened", map[string]interface{}{"session_id": sessionID})
		internalWS.ServeWs(h.hub, conn, sessionID)
		h.logger.Info("STREAM", "Session stream closed", map[string]interface{}{"session_id": sessionID})
	})(c)
}

func (h *SessionStreamHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/synthesis/v1/sessions/:id/stream", h.ServeWs)
}
