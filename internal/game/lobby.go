package game

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/scribble-server/internal"
	"github.com/scythe504/scribble-server/internal/utils"
)

// =============================================================================
// JOINING & RECONNECTING
// =============================================================================

// AddPlayer seats a player. A client id still inside its reconnect grace
// window gets its old seat and score back; a client id that is already
// present just has its connection replaced.
func (r *Room) AddPlayer(clientID, username string, conn internal.Conn) (*internal.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRoomClosed
	}

	if seat := r.seatOfClient(clientID); seat >= 0 {
		player := r.players[seat]
		player.Conn = conn
		log.Info().Str("room", r.name).Str("client", clientID).Msg("[AddPlayer] connection replaced")
		r.sendLocked(player, r.currentPhaseLocked())
		r.syncJoinerLocked(player)
		r.broadcastLocked(r.playersListLocked())
		return player, nil
	}

	if len(r.players) >= r.maxPlayers {
		log.Info().Str("room", r.name).Str("client", clientID).Int("max", r.maxPlayers).
			Msg("[AddPlayer] room is full, rejecting player")
		return nil, ErrRoomFull
	}
	if r.usernameTakenLocked(username, clientID) {
		return nil, ErrUsernameTaken
	}

	var player *internal.Player
	if pr, ok := r.pending[clientID]; ok {
		pr.timer.Stop()
		delete(r.pending, clientID)
		player = pr.player
		player.Conn = conn
		player.Username = username
		r.insertSeat(pr.seat, player)
		log.Info().Str("room", r.name).Str("client", clientID).Int("seat", pr.seat).Int("score", player.Score).
			Msg("[AddPlayer] player reconnected within grace window")
	} else {
		player = internal.NewPlayer(clientID, username, conn)
		r.players = append(r.players, player)
		log.Info().Str("room", r.name).Str("client", clientID).Str("username", username).
			Int("players", len(r.players)).Msg("[AddPlayer] player joined")
	}

	if !r.fire(r.event(eventPlayerJoined)) {
		r.sendLocked(player, r.currentPhaseLocked())
	}
	r.syncJoinerLocked(player)

	r.broadcastLocked(r.playersListLocked())
	r.broadcastLocked(internal.Announcement{
		Message:          fmt.Sprintf("%s joined the party!", username),
		Timestamp:        time.Now().UnixMilli(),
		AnnouncementType: internal.AnnouncementPlayerJoined,
	})
	return player, nil
}

// syncJoinerLocked brings a (re)joining player up to date with the round in progress.
func (r *Room) syncJoinerLocked(player *internal.Player) {
	isDrawer := r.drawer != nil && r.drawer.ClientID == player.ClientID

	switch r.phase {
	case internal.PhaseNewRound:
		if isDrawer && len(r.candidates) > 0 {
			r.sendLocked(player, internal.NewWords{NewWords: r.candidates})
		}
	case internal.PhaseDrawing:
		word := r.word
		if !isDrawer {
			word = utils.GetMaskedWord(word)
		}
		r.sendLocked(player, internal.GameState{DrawingPlayer: r.drawerName(), Word: word})
	case internal.PhaseRoundReveal:
		if r.word != "" {
			r.sendLocked(player, internal.GameState{DrawingPlayer: r.drawerName(), Word: r.word})
		}
	}

	if len(r.strokes) > 0 && (r.phase == internal.PhaseDrawing || r.phase == internal.PhaseRoundReveal) {
		r.sendLocked(player, r.replayLocked())
	}
}

// currentPhaseLocked describes the running phase with the time it has left.
func (r *Room) currentPhaseLocked() internal.PhaseChange {
	phase := r.phase
	remaining := r.cfg.duration(phase)
	if r.timer != nil {
		remaining = r.timer.Remaining()
	}
	return internal.PhaseChange{
		Phase:         &phase,
		Timestamp:     remaining.Milliseconds(),
		DrawingPlayer: r.drawerName(),
	}
}

func (r *Room) drawerName() string {
	if r.drawer == nil {
		return ""
	}
	return r.drawer.Username
}
