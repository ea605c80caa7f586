package ws

import (
	"context"
	"sync"
	"time"

	"github.com/ignatzorin/sugvoyage-backend/internal/goroutine"
	"github.com/ignatzorin/sugvoyage-backend/internal/logger"
)

// Hub управляет всеми WebSocket клиентами и периодически
// перепроверяет места рядом с их последними позициями.
type Hub struct {
	mu           sync.RWMutex
	clients      map[*Client]struct{}
	register     chan *Client
	unregister   chan *Client
	scanInterval time.Duration
	done         chan struct{}
}

// NewHub создаёт новый хаб. scanInterval <= 0 отключает периодическую проверку.
func NewHub(scanInterval time.Duration) *Hub {
	return &Hub{
		clients:      make(map[*Client]struct{}),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		scanInterval: scanInterval,
		done:         make(chan struct{}),
	}
}

// Run запускает главный цикл хаба и возвращается после отмены ctx.
// При остановке все соединения закрываются.
func (h *Hub) Run(ctx context.Context) {
	var tick <-chan time.Time
	if h.scanInterval > 0 {
		ticker := time.NewTicker(h.scanInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-tick:
			clients := h.snapshot()
			goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
				h.rescan(ctx, clients)
			})
		}
	}
}

// Register добавляет клиента. После остановки хаба вызов ничего не делает.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Done закрывается после остановки хаба.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Count возвращает число подключённых клиентов.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}

// rescan повторяет проверку для каждого клиента с известной позицией.
func (h *Hub) rescan(ctx context.Context, clients []*Client) {
	for _, c := range clients {
		if ctx.Err() != nil {
			return
		}
		select {
		case <-c.done:
			continue
		default:
		}
		goroutine.Recover(func() { c.checkProximity(ctx) })
	}
}

func (h *Hub) shutdown() {
	close(h.done)

	clients := h.snapshot()
	for _, c := range clients {
		c.Close()
	}

	h.mu.Lock()
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	logger.L().WithField("clients", len(clients)).Info("ws: hub stopped")
}
