package game

import (
	"testing"
	"time"

	"github.com/scythe504/scribble-server/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chat(text string) internal.ChatMessage {
	return internal.ChatMessage{RoomName: "test-room", Message: text, Timestamp: time.Now().UnixMilli()}
}

func TestEvaluateGuess(t *testing.T) {
	t.Run("matches ignoring case and surrounding space", func(t *testing.T) {
		r, players := drawingRoom(t, 3, "pizza")
		drawer := drawerID(r)
		g := guessers(players, drawer)

		assert.True(t, r.EvaluateGuess(g[0].id, chat("  Pizza  ")))
		assert.Equal(t, internal.PhaseDrawing, r.Phase())

		points := scoreOf(r, g[0].id)
		assert.GreaterOrEqual(t, points, 95)
		assert.LessOrEqual(t, points, 100)
		assert.Equal(t, DrawerPoints(3), scoreOf(r, drawer))

		announcement := last[internal.Announcement](t, g[1].conn)
		assert.Equal(t, internal.AnnouncementPlayerGuessedWord, announcement.AnnouncementType)
		list := last[internal.PlayersList](t, g[1].conn)
		assert.Equal(t, g[0].name, list.Players[0].UserName)
		assert.Equal(t, 1, list.Players[0].Rank)
	})

	t.Run("near misses do not match", func(t *testing.T) {
		r, players := drawingRoom(t, 3, "pizza")
		g := guessers(players, drawerID(r))

		assert.False(t, r.EvaluateGuess(g[0].id, chat("pizzas")))
		assert.False(t, r.EvaluateGuess(g[0].id, chat("piz za")))
		assert.Zero(t, scoreOf(r, g[0].id))
		assert.Empty(t, received[internal.Announcement](t, g[1].conn))
	})

	t.Run("a second correct guess scores nothing", func(t *testing.T) {
		r, players := drawingRoom(t, 3, "pizza")
		g := guessers(players, drawerID(r))

		require.True(t, r.EvaluateGuess(g[0].id, chat("pizza")))
		before := scoreOf(r, g[0].id)
		assert.False(t, r.EvaluateGuess(g[0].id, chat("pizza")))
		assert.Equal(t, before, scoreOf(r, g[0].id))
	})

	t.Run("rejoining under a new name scores nothing", func(t *testing.T) {
		r, players := drawingRoom(t, 3, "pizza")
		g := guessers(players, drawerID(r))

		require.True(t, r.EvaluateGuess(g[0].id, chat("pizza")))
		before := scoreOf(r, g[0].id)

		r.RemovePlayer(g[0].id)
		_, err := r.AddPlayer(g[0].id, "renamed", &mockConn{})
		require.NoError(t, err)
		require.Equal(t, internal.PhaseDrawing, r.Phase())

		assert.False(t, r.EvaluateGuess(g[0].id, chat("pizza")))
		assert.Equal(t, before, scoreOf(r, g[0].id))
	})

	t.Run("the drawer cannot guess", func(t *testing.T) {
		r, _ := drawingRoom(t, 3, "pizza")
		drawer := drawerID(r)
		assert.False(t, r.EvaluateGuess(drawer, chat("pizza")))
		assert.Zero(t, scoreOf(r, drawer))
	})

	t.Run("only while drawing", func(t *testing.T) {
		r := newTestRoom(t, 8, longConfig())
		players := join(t, r, 2)
		assert.False(t, r.EvaluateGuess(players[0].id, chat("pizza")))
	})

	t.Run("everybody guessing ends the round early", func(t *testing.T) {
		r, players := drawingRoom(t, 3, "pizza")
		drawer := drawerID(r)
		g := guessers(players, drawer)

		require.True(t, r.EvaluateGuess(g[0].id, chat("pizza")))
		require.True(t, r.EvaluateGuess(g[1].id, chat("PIZZA")))
		assert.Equal(t, internal.PhaseRoundReveal, r.Phase())

		var types []internal.AnnouncementType
		for _, a := range received[internal.Announcement](t, byID(players, drawer).conn) {
			types = append(types, a.AnnouncementType)
		}
		assert.Contains(t, types, internal.AnnouncementEverybodyGuessedIt)

		reveal := last[internal.GameState](t, g[0].conn)
		assert.Equal(t, "pizza", reveal.Word)

		// two guesses, no penalty
		assert.Equal(t, 2*DrawerPoints(3), scoreOf(r, drawer))
	})
}

func TestSetWordAndAdvance(t *testing.T) {
	t.Run("sends the plain word to the drawer only", func(t *testing.T) {
		r := newTestRoom(t, 3, longConfig())
		players := join(t, r, 3)
		require.Equal(t, internal.PhaseNewRound, r.Phase())
		drawer := drawerID(r)

		assert.True(t, r.SetWordAndAdvance(drawer, "guitar"))
		assert.Equal(t, internal.PhaseDrawing, r.Phase())

		assert.Equal(t, "guitar", last[internal.GameState](t, byID(players, drawer).conn).Word)
		for _, g := range guessers(players, drawer) {
			state := last[internal.GameState](t, g.conn)
			assert.Equal(t, "_ _ _ _ _ _", state.Word)
			assert.Equal(t, byID(players, drawer).name, state.DrawingPlayer)
		}
	})

	t.Run("ignored outside word selection", func(t *testing.T) {
		r := newTestRoom(t, 8, longConfig())
		players := join(t, r, 2)
		assert.False(t, r.SetWordAndAdvance(players[0].id, "guitar"))
		assert.Equal(t, internal.PhaseCountdownToStart, r.Phase())

		r2, _ := drawingRoom(t, 2, "pizza")
		assert.False(t, r2.SetWordAndAdvance(drawerID(r2), "guitar"))
		r2.mu.Lock()
		assert.Equal(t, "pizza", r2.word)
		r2.mu.Unlock()
	})

	t.Run("only the current drawer chooses", func(t *testing.T) {
		r := newTestRoom(t, 3, longConfig())
		players := join(t, r, 3)
		require.Equal(t, internal.PhaseNewRound, r.Phase())
		for _, g := range guessers(players, drawerID(r)) {
			assert.False(t, r.SetWordAndAdvance(g.id, "guitar"))
		}
		assert.Equal(t, internal.PhaseNewRound, r.Phase())
	})

	t.Run("last round's drawer cannot pick the next word", func(t *testing.T) {
		r, _ := drawingRoom(t, 3, "pizza")
		previous := drawerID(r)
		require.True(t, fireTimer(r))
		require.Equal(t, internal.PhaseRoundReveal, r.Phase())
		require.True(t, fireTimer(r))
		require.Equal(t, internal.PhaseNewRound, r.Phase())
		require.NotEqual(t, previous, drawerID(r))

		assert.False(t, r.SetWordAndAdvance(previous, "guitar"))
		assert.Equal(t, internal.PhaseNewRound, r.Phase())
		r.mu.Lock()
		assert.Empty(t, r.word)
		r.mu.Unlock()
	})

	t.Run("blank words are refused", func(t *testing.T) {
		r := newTestRoom(t, 3, longConfig())
		join(t, r, 3)
		drawer := drawerID(r)
		assert.False(t, r.SetWordAndAdvance(drawer, "   "))
		assert.False(t, r.SetWordAndAdvance(drawer, ""))
		assert.Equal(t, internal.PhaseNewRound, r.Phase())

		assert.True(t, r.SetWordAndAdvance(drawer, "  guitar "))
		r.mu.Lock()
		assert.Equal(t, "guitar", r.word)
		r.mu.Unlock()
	})

	t.Run("timeout picks a candidate", func(t *testing.T) {
		r := newTestRoom(t, 3, longConfig())
		join(t, r, 3)
		require.True(t, fireTimer(r))
		assert.Equal(t, internal.PhaseDrawing, r.Phase())
		r.mu.Lock()
		assert.Contains(t, []string{"pizza", "guitar", "castle"}, r.word)
		r.mu.Unlock()
	})
}

func TestNobodyGuessedPenalty(t *testing.T) {
	r, _ := drawingRoom(t, 3, "pizza")
	drawer := drawerID(r)

	require.True(t, fireTimer(r))
	assert.Equal(t, internal.PhaseRoundReveal, r.Phase())
	assert.Equal(t, -internal.PenaltyNobodyGuessed, scoreOf(r, drawer))
}
