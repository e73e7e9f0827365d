package services

import (
	"sync"

	"github.com/google/uuid"
)

// Presence tracks which users hold live connections on this node. A user can
// be connected from several devices at once, so connections are keyed per
// connection id under the user.
type Presence struct {
	mu    sync.RWMutex
	conns map[int]map[uuid.UUID]*Client
}

// NewPresence returns an empty registry.
func NewPresence() *Presence {
	return &Presence{conns: make(map[int]map[uuid.UUID]*Client)}
}

// Add registers a live connection for the user.
func (p *Presence) Add(userID int, c *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conns[userID] == nil {
		p.conns[userID] = make(map[uuid.UUID]*Client)
	}
	p.conns[userID][c.ID] = c
}

// Remove drops one connection; the user stays present while other connections remain.
func (p *Presence) Remove(userID int, connID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.conns[userID], connID)
	if len(p.conns[userID]) == 0 {
		delete(p.conns, userID)
	}
}

// IsConnected reports whether the user has at least one live connection.
func (p *Presence) IsConnected(userID int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conns[userID]) > 0
}
