package ws

import (
	"sync"
	"time"
)

// NotifyGate пропускает не больше одного уведомления за interval.
type NotifyGate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// NewNotifyGate создаёт гейт. Первое уведомление проходит сразу.
func NewNotifyGate(interval time.Duration) *NotifyGate {
	return &NotifyGate{interval: interval, now: time.Now}
}

// Allow сообщает, можно ли отправить уведомление сейчас,
// и если да, запоминает момент отправки.
func (g *NotifyGate) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}
