package game

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/scythe504/scribble-server/internal"
	"github.com/stretchr/testify/require"
)

// mockConn records every frame sent to it.
type mockConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (m *mockConn) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return internal.ErrConnClosed
	}
	m.frames = append(m.frames, append([]byte(nil), data...))
	return nil
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConn) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

func (m *mockConn) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = nil
}

func (m *mockConn) payloads(t *testing.T) []internal.Payload {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]internal.Payload, 0, len(m.frames))
	for _, f := range m.frames {
		p, err := internal.Decode(f)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

// received returns every payload of type T the connection got, in order.
func received[T any](t *testing.T, m *mockConn) []*T {
	t.Helper()
	var out []*T
	for _, p := range m.payloads(t) {
		if v, ok := any(p).(*T); ok {
			out = append(out, v)
		}
	}
	return out
}

func last[T any](t *testing.T, m *mockConn) *T {
	t.Helper()
	all := received[T](t, m)
	require.NotEmpty(t, all, "no %T received", *new(T))
	return all[len(all)-1]
}

type fixedWords []string

func (w fixedWords) RandomWords(_ context.Context, n int) ([]string, error) {
	return w[:min(n, len(w))], nil
}

// longConfig keeps every phase running far longer than any test, so only
// the test itself moves the room forward.
func longConfig() Config {
	cfg := DefaultConfig()
	for phase := range cfg.PhaseDurations {
		cfg.PhaseDurations[phase] = time.Hour
	}
	cfg.ReconnectGrace = time.Hour
	cfg.TickInterval = time.Hour
	return cfg
}

func newTestRoom(t *testing.T, maxPlayers int, cfg Config) *Room {
	t.Helper()
	r := NewRoom("test-room", maxPlayers, cfg, fixedWords{"pizza", "guitar", "castle"}, nil)
	t.Cleanup(r.Close)
	return r
}

type testPlayer struct {
	id   string
	name string
	conn *mockConn
}

func join(t *testing.T, r *Room, n int) []testPlayer {
	t.Helper()
	players := make([]testPlayer, 0, n)
	for i := 0; i < n; i++ {
		p := testPlayer{id: fmt.Sprintf("client-%d", i), name: fmt.Sprintf("player%d", i), conn: &mockConn{}}
		_, err := r.AddPlayer(p.id, p.name, p.conn)
		require.NoError(t, err)
		players = append(players, p)
	}
	return players
}

// fireTimer acts as if the running phase timer ran out.
func fireTimer(r *Room) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fire(r.event(eventTimerExpired))
}

func drawerID(r *Room) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.drawer == nil {
		return ""
	}
	return r.drawer.ClientID
}

func isDrawer(r *Room, clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isDrawerLocked(clientID)
}

func scoreOf(r *Room, clientID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seat := r.seatOfClient(clientID); seat >= 0 {
		return r.players[seat].Score
	}
	if pr, ok := r.pending[clientID]; ok {
		return pr.player.Score
	}
	return 0
}

func byID(players []testPlayer, id string) testPlayer {
	for _, p := range players {
		if p.id == id {
			return p
		}
	}
	return testPlayer{}
}

func guessers(players []testPlayer, drawer string) []testPlayer {
	var out []testPlayer
	for _, p := range players {
		if p.id != drawer {
			out = append(out, p)
		}
	}
	return out
}

// drawingRoom seats n players in a room with one spare seat and drives it
// into the drawing phase with word as the secret.
func drawingRoom(t *testing.T, n int, word string) (*Room, []testPlayer) {
	t.Helper()
	r := newTestRoom(t, n+1, longConfig())
	players := join(t, r, n)
	require.Equal(t, internal.PhaseCountdownToStart, r.Phase())

	require.True(t, fireTimer(r))
	require.Equal(t, internal.PhaseRoundReveal, r.Phase())
	require.True(t, fireTimer(r))
	require.Equal(t, internal.PhaseNewRound, r.Phase())
	require.True(t, r.SetWordAndAdvance(drawerID(r), word))
	require.Equal(t, internal.PhaseDrawing, r.Phase())

	for _, p := range players {
		p.conn.reset()
	}
	return r, players
}
