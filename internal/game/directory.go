package game

import (
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/scribble-server/internal"
)

// =============================================================================
// ROOM DIRECTORY
// =============================================================================

// Directory maps room names to live rooms. Its lock is never held while a
// room lock is taken.
type Directory struct {
	cfg   Config
	words WordSource

	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewDirectory(cfg Config, words WordSource) *Directory {
	return &Directory{
		cfg:   cfg,
		words: words,
		rooms: make(map[string]*Room),
	}
}

// Create registers a new room. The name must be free and the capacity in bounds.
func (d *Directory) Create(name string, maxPlayers int) (*Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidRoomName
	}
	if err := internal.ValidateMaxPlayers(maxPlayers); err != nil {
		return nil, ErrInvalidMaxPlayers
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.rooms[name]; ok {
		return nil, ErrRoomExists
	}
	room := NewRoom(name, maxPlayers, d.cfg, d.words, d.remove)
	d.rooms[name] = room

	log.Info().Str("room", name).Int("maxPlayers", maxPlayers).Int("rooms", len(d.rooms)).
		Msg("[Create] room created")
	return room, nil
}

func (d *Directory) Get(name string) (*Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := d.rooms[name]
	return room, ok
}

// Remove closes the named room and drops it from the directory.
func (d *Directory) Remove(name string) bool {
	d.mu.Lock()
	room, ok := d.rooms[name]
	if ok {
		delete(d.rooms, name)
	}
	d.mu.Unlock()

	if ok {
		room.Close()
		log.Info().Str("room", name).Msg("[Remove] room removed")
	}
	return ok
}

// remove is each room's onEmpty hook. A newer room under the same name is left alone.
func (d *Directory) remove(room *Room) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if current, ok := d.rooms[room.Name()]; ok && current == room {
		delete(d.rooms, room.Name())
		log.Info().Str("room", room.Name()).Int("rooms", len(d.rooms)).Msg("[remove] empty room removed")
	}
}

func (d *Directory) snapshot() []*Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rooms := make([]*Room, 0, len(d.rooms))
	for _, room := range d.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// Search lists rooms whose name contains query, ignoring case, sorted by name.
func (d *Directory) Search(query string) []internal.RoomResponse {
	query = strings.ToLower(strings.TrimSpace(query))

	results := make([]internal.RoomResponse, 0)
	for _, room := range d.snapshot() {
		if !strings.Contains(strings.ToLower(room.Name()), query) {
			continue
		}
		if room.Closed() {
			continue
		}
		results = append(results, room.Info())
	}
	slices.SortFunc(results, func(a, b internal.RoomResponse) int {
		return strings.Compare(a.Name, b.Name)
	})
	return results
}

// RoomWithClient finds the room that currently seats clientID.
func (d *Directory) RoomWithClient(clientID string) (*Room, bool) {
	for _, room := range d.snapshot() {
		if room.HasClient(clientID) {
			return room, true
		}
	}
	return nil, false
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

// Close tears down every room.
func (d *Directory) Close() {
	d.mu.Lock()
	rooms := d.rooms
	d.rooms = make(map[string]*Room)
	d.mu.Unlock()

	for _, room := range rooms {
		room.Close()
	}
	log.Info().Int("rooms", len(rooms)).Msg("[Close] all rooms closed")
}
