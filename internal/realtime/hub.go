// Package realtime pushes company-scoped notifications to connected
// browsers. Delivery is best effort: no replay, no acknowledgment.
package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const (
	EventAppointmentCreated = "appointment_created"
	EventAppointmentUpdated = "appointment_updated"
	EventAppointmentDeleted = "appointment_deleted"
)

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Broadcaster is what write paths depend on. Implementations must not block
// on slow receivers for long and never report failures to the caller.
type Broadcaster interface {
	Broadcast(ctx context.Context, companyID string, msg Message)
}

// Conn is the subset of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
}

type subscriber struct {
	conn      Conn
	companyID string
	mu        sync.Mutex // serializes writes on conn
}

// Hub tracks open connections per company.
type Hub struct {
	log  *zap.Logger
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{log: log, subs: make(map[*subscriber]struct{})}
}

// Register adds conn under companyID and returns the function that removes
// it again.
func (h *Hub) Register(companyID string, conn Conn) (unregister func()) {
	s := &subscriber{conn: conn, companyID: companyID}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return func() { h.remove(s) }
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

// Count returns how many connections are registered for companyID.
func (h *Hub) Count(companyID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for s := range h.subs {
		if s.companyID == companyID {
			n++
		}
	}
	return n
}

// Broadcast writes msg to every connection of companyID. A failed write
// drops that connection.
func (h *Hub) Broadcast(ctx context.Context, companyID string, msg Message) {
	h.mu.RLock()
	targets := make([]*subscriber, 0)
	for s := range h.subs {
		if s.companyID == companyID {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range targets {
		s.mu.Lock()
		err := s.conn.WriteJSON(msg)
		s.mu.Unlock()
		if err != nil {
			h.log.Debug("websocket write failed, dropping connection",
				zap.String("company_id", companyID),
				zap.Error(err),
			)
			h.remove(s)
		}
	}
}
