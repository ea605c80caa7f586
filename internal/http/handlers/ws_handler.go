package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/sugvoyage-backend/internal/dto"
	"github.com/ignatzorin/sugvoyage-backend/internal/http/middleware"
	"github.com/ignatzorin/sugvoyage-backend/internal/logger"
	"github.com/ignatzorin/sugvoyage-backend/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений для уведомлений о местах.
type WSHandler struct {
	hub            *ws.Hub
	finder         ws.SpotFinder
	tokens         middleware.TokenParser
	notifyInterval time.Duration
	upgrader       websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер. Пустой allowedOrigins разрешает любые origin.
func NewWSHandler(hub *ws.Hub, finder ws.SpotFinder, tokens middleware.TokenParser, notifyInterval time.Duration, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:            hub,
		finder:         finder,
		tokens:         tokens,
		notifyInterval: notifyInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Spots обслуживает GET /api/ws/spots[?token=...].
// Токен необязателен, но если передан, должен быть валидным.
func (h *WSHandler) Spots(c *gin.Context) {
	userID := uuid.Nil
	if raw := c.Query("token"); raw != "" {
		id, err := h.tokens.Parse(raw)
		if err != nil || id == uuid.Nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid token"})
			return
		}
		userID = id
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ с ошибкой.
		logger.L().WithError(err).Debug("ws: upgrade failed")
		return
	}

	client := ws.NewClient(conn, h.hub, h.finder, userID, h.notifyInterval)
	h.hub.Register(client)

	client.Run(c.Request.Context())
}
