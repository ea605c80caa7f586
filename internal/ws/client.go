package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sugvoyage-backend/internal/dto"
	"github.com/ignatzorin/sugvoyage-backend/internal/geo"
	"github.com/ignatzorin/sugvoyage-backend/internal/goroutine"
	"github.com/ignatzorin/sugvoyage-backend/internal/logger"
	"github.com/ignatzorin/sugvoyage-backend/internal/models"
	"github.com/ignatzorin/sugvoyage-backend/internal/pkg/apperror"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 8
)

// Типы сообщений протокола.
const (
	EventUserLocation = "user-location"
	EventSpotInRadius = "spot-in-radius"
	EventError        = "error"
)

// SpotFinder ищет места рядом с точкой.
type SpotFinder interface {
	Nearby(ctx context.Context, at geo.Point, radiusKm float64) (*models.SpotsInRadius, error)
}

// envelope - входящее сообщение {"type": ..., "data": ...}.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type outgoing struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Client представляет одно подключение WebSocket.
type Client struct {
	conn   *websocket.Conn
	hub    *Hub
	finder SpotFinder
	gate   *NotifyGate
	userID uuid.UUID
	send   chan []byte

	mu       sync.Mutex
	location *dto.LocationMessage

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient создаёт нового клиента. userID может быть uuid.Nil для анонимного подключения.
func NewClient(conn *websocket.Conn, hub *Hub, finder SpotFinder, userID uuid.UUID, notifyInterval time.Duration) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		finder: finder,
		gate:   NewNotifyGate(notifyInterval),
		userID: userID,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// Run запускает обработку входящих и исходящих сообщений и блокируется до отключения.
func (c *Client) Run(ctx context.Context) {
	goroutine.SafeGo(c.writePump)
	c.readPump(ctx)
}

// Close закрывает соединение. Повторные вызовы ничего не делают.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.hub.Unregister(c)
		_ = c.conn.Close()
	})
}

// lastLocation возвращает последнюю присланную позицию.
func (c *Client) lastLocation() (dto.LocationMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.location == nil {
		return dto.LocationMessage{}, false
	}
	return *c.location, true
}

func (c *Client) setLocation(loc dto.LocationMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.location = &loc
}

func (c *Client) readPump(ctx context.Context) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.L().WithError(err).Debug("ws: connection closed unexpectedly")
			}
			return
		}
		goroutine.Recover(func() { c.handleMessage(ctx, raw) })
	}
}

// handleMessage разбирает входящее сообщение. Неизвестные типы игнорируются.
func (c *Client) handleMessage(ctx context.Context, raw []byte) {
	var msg envelope
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Malformed message")
		return
	}

	switch msg.Type {
	case EventUserLocation:
		var loc dto.LocationMessage
		if err := json.Unmarshal(msg.Data, &loc); err != nil {
			c.sendError("Malformed location")
			return
		}
		if !(geo.Point{Latitude: loc.Latitude, Longitude: loc.Longitude}).Valid() {
			c.sendError("Invalid coordinates")
			return
		}
		c.setLocation(loc)
		c.checkProximity(ctx)
	default:
		logger.L().WithField("type", msg.Type).Debug("ws: unknown message type")
	}
}

// checkProximity ищет места рядом с последней позицией и отправляет
// уведомление, если они есть и гейт его пропускает.
func (c *Client) checkProximity(ctx context.Context) {
	loc, ok := c.lastLocation()
	if !ok {
		return
	}

	res, err := c.finder.Nearby(ctx, geo.Point{Latitude: loc.Latitude, Longitude: loc.Longitude}, loc.Radius)
	if err != nil {
		if appErr, ok := apperror.As(err); ok && appErr.Code == apperror.ErrCodeValidation {
			c.sendError(appErr.Message)
			return
		}
		logger.L().WithError(err).Warn("ws: spot lookup failed")
		return
	}

	if res.Count == 0 || !c.gate.Allow() {
		return
	}
	c.emit(EventSpotInRadius, res)
}

func (c *Client) sendError(message string) {
	c.emit(EventError, map[string]string{"message": message})
}

// emit ставит сообщение в очередь отправки. При переполненной очереди сообщение отбрасывается.
func (c *Client) emit(event string, data any) {
	payload, err := json.Marshal(outgoing{Type: event, Data: data})
	if err != nil {
		logger.L().WithError(err).Error("ws: marshal message")
		return
	}

	select {
	case <-c.done:
	case c.send <- payload:
	default:
		logger.L().WithFields(logrus.Fields{
			"user_id": c.userID,
			"type":    event,
		}).Warn("ws: send buffer full, message dropped")
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
