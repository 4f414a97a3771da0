package game

import (
	"sync"

	"github.com/scythe504/scribble-server/internal"
)

// =============================================================================
// CONNECTION REGISTRY
// =============================================================================

type registration struct {
	conn internal.Conn
	room *Room
}

// Registry tracks the live connection of each client id and the room it joined.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*registration
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*registration)}
}

// Register makes conn the live connection for clientID and returns the one
// it replaced, if any. The room binding survives the swap.
func (reg *Registry) Register(clientID string, conn internal.Conn) internal.Conn {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if entry, ok := reg.clients[clientID]; ok {
		prev := entry.conn
		entry.conn = conn
		if prev == conn {
			return nil
		}
		return prev
	}
	reg.clients[clientID] = &registration{conn: conn}
	return nil
}

// SetRoom binds clientID to room as long as conn is still its live connection.
func (reg *Registry) SetRoom(clientID string, conn internal.Conn, room *Room) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	entry, ok := reg.clients[clientID]
	if !ok || entry.conn != conn {
		return false
	}
	entry.room = room
	return true
}

func (reg *Registry) Lookup(clientID string) (internal.Conn, *Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	entry, ok := reg.clients[clientID]
	if !ok {
		return nil, nil, false
	}
	return entry.conn, entry.room, true
}

// Unregister forgets clientID if conn is still its live connection and
// returns the room it was bound to, which may be nil. A connection that was
// already replaced unregisters nothing and reports false.
func (reg *Registry) Unregister(clientID string, conn internal.Conn) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	entry, ok := reg.clients[clientID]
	if !ok || entry.conn != conn {
		return nil, false
	}
	delete(reg.clients, clientID)
	return entry.room, true
}

func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.clients)
}
