package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/scribble-server/internal"
)

var (
	ErrRoomExists        = errors.New("room already exists")
	ErrInvalidRoomName   = errors.New("invalid room name")
	ErrInvalidMaxPlayers = errors.New("invalid max players")
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomClosed        = errors.New("room closed")
	ErrRoomFull          = errors.New("room is full")
	ErrUsernameTaken     = errors.New("username already taken")
)

// WordSource supplies random candidate words.
type WordSource interface {
	RandomWords(ctx context.Context, n int) ([]string, error)
}

type Config struct {
	PhaseDurations map[internal.GamePhase]time.Duration
	TickInterval   time.Duration
	ReconnectGrace time.Duration
	WordCount      int
	WordTimeout    time.Duration
}

func DefaultConfig() Config {
	durations := make(map[internal.GamePhase]time.Duration, len(internal.DefaultPhaseDurations))
	for phase, d := range internal.DefaultPhaseDurations {
		durations[phase] = d
	}
	return Config{
		PhaseDurations: durations,
		TickInterval:   time.Second,
		ReconnectGrace: 60 * time.Second,
		WordCount:      internal.CandidateWordsPerTurn,
		WordTimeout:    2 * time.Second,
	}
}

func (c Config) duration(phase internal.GamePhase) time.Duration {
	if d, ok := c.PhaseDurations[phase]; ok && d > 0 {
		return d
	}
	return internal.DefaultPhaseDurations[phase]
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.PhaseDurations == nil {
		c.PhaseDurations = def.PhaseDurations
	}
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.ReconnectGrace <= 0 {
		c.ReconnectGrace = def.ReconnectGrace
	}
	if c.WordCount <= 0 {
		c.WordCount = def.WordCount
	}
	if c.WordTimeout <= 0 {
		c.WordTimeout = def.WordTimeout
	}
	return c
}

// pendingRemoval keeps a departed player's seat and score until the grace
// timer fires or the same client id comes back.
type pendingRemoval struct {
	player *internal.Player
	seat   int
	timer  *time.Timer
}

type strokeRecord struct {
	data internal.DrawData
	raw  json.RawMessage
}

// Room is one game session. Every field below mu is guarded by it; phase
// transitions and their side effects run entirely while it is held.
type Room struct {
	name       string
	maxPlayers int
	cfg        Config
	words      WordSource
	onEmpty    func(*Room)

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	closed         bool
	phase          internal.GamePhase
	players        []*internal.Player
	drawer         *internal.Player
	drawerIndex    int
	drawnThisCycle map[string]bool
	word           string
	candidates     []string
	winners        []string // client ids
	roundStart     time.Time
	strokes        []strokeRecord
	timer          *internal.GameTimer
	pending        map[string]*pendingRemoval
}

// NewRoom builds an idle room in the lobby. onEmpty runs, without the room
// lock held, once the last player has left and the room has torn itself down.
func NewRoom(name string, maxPlayers int, cfg Config, words WordSource, onEmpty func(*Room)) *Room {
	ctx, cancel := context.WithCancel(context.Background())
	return &Room{
		name:           name,
		maxPlayers:     maxPlayers,
		cfg:            cfg.withDefaults(),
		words:          words,
		onEmpty:        onEmpty,
		ctx:            ctx,
		cancel:         cancel,
		phase:          internal.PhaseLobby,
		players:        make([]*internal.Player, 0, maxPlayers),
		drawnThisCycle: make(map[string]bool),
		pending:        make(map[string]*pendingRemoval),
	}
}

func (r *Room) Name() string    { return r.name }
func (r *Room) MaxPlayers() int { return r.maxPlayers }

func (r *Room) Phase() internal.GamePhase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

func (r *Room) Info() internal.RoomResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	return internal.RoomResponse{
		Name:        r.name,
		MaxPlayers:  r.maxPlayers,
		PlayerCount: len(r.players),
	}
}

// Closed reports whether the room has been torn down.
func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// CheckJoin tells whether username could join right now.
func (r *Room) CheckJoin(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.closed:
		return ErrRoomClosed
	case r.usernameTakenLocked(username, ""):
		return ErrUsernameTaken
	case len(r.players) >= r.maxPlayers:
		return ErrRoomFull
	}
	return nil
}

func (r *Room) HasClient(clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seatOfClient(clientID) >= 0
}

// PlayerName returns the username of the present player with clientID.
func (r *Room) PlayerName(clientID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seat := r.seatOfClient(clientID); seat >= 0 {
		return r.players[seat].Username, true
	}
	return "", false
}

// RemovePlayer takes the player out of the active list at once and keeps
// their seat and score for the reconnect grace window.
func (r *Room) RemovePlayer(clientID string) {
	r.mu.Lock()
	emptied := r.removePlayerLocked(clientID)
	r.mu.Unlock()

	if emptied && r.onEmpty != nil {
		r.onEmpty(r)
	}
}

func (r *Room) removePlayerLocked(clientID string) bool {
	if r.closed {
		return false
	}
	seat := r.seatOfClient(clientID)
	if seat < 0 {
		return false
	}

	player := r.removeSeat(seat)
	pr := &pendingRemoval{player: player, seat: seat}
	pr.timer = time.AfterFunc(r.cfg.ReconnectGrace, func() {
		r.expirePending(clientID, pr)
	})
	r.pending[clientID] = pr

	log.Info().Str("room", r.name).Str("client", clientID).Str("username", player.Username).
		Int("players", len(r.players)).Msg("[RemovePlayer] player left, seat held for reconnect")

	if len(r.players) == 0 {
		log.Info().Str("room", r.name).Msg("[RemovePlayer] room is empty, tearing down")
		r.teardownLocked()
		return true
	}

	r.broadcastLocked(internal.Announcement{
		Message:          fmt.Sprintf("%s left the party :(", player.Username),
		Timestamp:        time.Now().UnixMilli(),
		AnnouncementType: internal.AnnouncementPlayerLeft,
	})
	r.broadcastLocked(r.playersListLocked())
	r.fire(r.event(eventPlayerLeft))
	return false
}

func (r *Room) expirePending(clientID string, pr *pendingRemoval) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.pending[clientID]; ok && current == pr {
		delete(r.pending, clientID)
		log.Debug().Str("room", r.name).Str("client", clientID).Msg("[expirePending] reconnect grace elapsed")
	}
}

// Close stops every timer the room owns. It does not notify onEmpty.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teardownLocked()
}

func (r *Room) teardownLocked() {
	if r.closed {
		return
	}
	r.closed = true
	r.cancelPhaseTimer()
	for clientID, pr := range r.pending {
		pr.timer.Stop()
		delete(r.pending, clientID)
	}
	r.cancel()
}

// =============================================================================
// SEATING
// =============================================================================

func (r *Room) seatOfClient(clientID string) int {
	return slices.IndexFunc(r.players, func(p *internal.Player) bool {
		return p.ClientID == clientID
	})
}

func (r *Room) seatOf(player *internal.Player) int {
	if player == nil {
		return -1
	}
	return slices.Index(r.players, player)
}

func (r *Room) playerByNameLocked(username string) *internal.Player {
	for _, p := range r.players {
		if p.Username == username {
			return p
		}
	}
	return nil
}

func (r *Room) usernameTakenLocked(username, clientID string) bool {
	p := r.playerByNameLocked(username)
	return p != nil && p.ClientID != clientID
}

func (r *Room) isDrawerLocked(clientID string) bool {
	return r.drawer != nil && r.drawer.ClientID == clientID && r.seatOf(r.drawer) >= 0
}

func (r *Room) removeSeat(seat int) *internal.Player {
	player := r.players[seat]
	r.players = slices.Delete(r.players, seat, seat+1)
	if player == r.drawer {
		// The next drawer now sits where the departed one did.
		r.drawerIndex = seat
	} else if seat < r.drawerIndex {
		r.drawerIndex--
	}
	r.syncDrawerIndex()
	return player
}

func (r *Room) insertSeat(seat int, player *internal.Player) {
	seat = min(max(seat, 0), len(r.players))
	r.players = slices.Insert(r.players, seat, player)
	if r.seatOf(r.drawer) < 0 && seat <= r.drawerIndex {
		r.drawerIndex++
	}
	r.syncDrawerIndex()
}

func (r *Room) syncDrawerIndex() {
	if seat := r.seatOf(r.drawer); seat >= 0 {
		r.drawerIndex = seat
	}
}
