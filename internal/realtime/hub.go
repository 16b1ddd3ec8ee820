// Package realtime fans comment/like updates out to the websocket clients
// watching an item. Delivery is fire-and-forget: every notification re-fetches
// the current state, so a missed message is corrected by the next one.
package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Conn is the subset of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
}

// lockedConn serializes writes to one connection. The websocket API forbids
// concurrent writes on a single conn, and every notification runs in its own
// goroutine.
type lockedConn struct {
	mu sync.Mutex
	c  Conn
}

func (l *lockedConn) WriteJSON(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.WriteJSON(v)
}

// Hub is the registry of connected subscribers keyed by the item they watch.
type Hub struct {
	mu   sync.Mutex
	subs map[uint]map[Conn]*lockedConn
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[Conn]*lockedConn)}
}

// Subscribe registers the connection and returns the write handle all further
// writes to it must go through, the caller's own snapshot write included.
func (h *Hub) Subscribe(itemID uint, c Conn) Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[itemID] == nil {
		h.subs[itemID] = make(map[Conn]*lockedConn)
	}
	lc := &lockedConn{c: c}
	h.subs[itemID][c] = lc
	return lc
}

func (h *Hub) Unsubscribe(itemID uint, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[itemID], c)
	if len(h.subs[itemID]) == 0 {
		delete(h.subs, itemID)
	}
}

// Broadcast writes the payload to every subscriber of the item. Write errors
// only drop that subscriber's message; there is no acknowledgment or replay.
func (h *Hub) Broadcast(itemID uint, payload interface{}) {
	h.mu.Lock()
	conns := make([]*lockedConn, 0, len(h.subs[itemID]))
	for _, lc := range h.subs[itemID] {
		conns = append(conns, lc)
	}
	h.mu.Unlock()

	for _, lc := range conns {
		_ = lc.WriteJSON(payload)
	}
}

// Notifier re-fetches the current state after a mutation commits and pushes
// it through the hub. The fetchers are injected so the package stays off the
// database.
type Notifier struct {
	Hub      *Hub
	Comments func(itemID uint) (interface{}, error)
	Likes    func(itemID uint) (int64, error)
	Log      *zap.SugaredLogger
}

// NotifyComments pushes the item's current comment list to its watchers.
func (n *Notifier) NotifyComments(itemID uint) {
	go func() {
		comments, err := n.Comments(itemID)
		if err != nil {
			n.logError("fetch comments for notification", err)
			return
		}
		n.Hub.Broadcast(itemID, map[string]interface{}{"comments": comments})
	}()
}

// NotifyLikes pushes the item's current like count to its watchers.
func (n *Notifier) NotifyLikes(itemID uint) {
	go func() {
		likes, err := n.Likes(itemID)
		if err != nil {
			n.logError("fetch likes for notification", err)
			return
		}
		n.Hub.Broadcast(itemID, map[string]interface{}{"likes": likes})
	}()
}

func (n *Notifier) logError(msg string, err error) {
	if n.Log != nil {
		n.Log.Errorw(msg, "error", err)
	}
}
