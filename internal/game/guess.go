package game

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/scribble-server/internal"
	"github.com/scythe504/scribble-server/internal/utils"
)

// =============================================================================
// GUESS HANDLING
// =============================================================================

// EvaluateGuess scores msg as a guess from clientID. It reports false, with
// no side effects, unless the room is drawing, the sender is a guesser who
// has not guessed yet, and the text matches the secret word.
func (r *Room) EvaluateGuess(clientID string, msg internal.ChatMessage) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.phase != internal.PhaseDrawing {
		return false
	}
	seat := r.seatOfClient(clientID)
	if seat < 0 || r.isDrawerLocked(clientID) {
		return false
	}
	guesser := r.players[seat]
	if slices.Contains(r.winners, guesser.ClientID) {
		return false
	}
	if !utils.MatchesWord(msg.Message, r.word) {
		return false
	}

	elapsed := timeNow().Sub(r.roundStart)
	points := GuessPoints(elapsed, r.cfg.duration(internal.PhaseDrawing))
	guesser.Score += points
	if r.drawer != nil {
		r.drawer.Score += DrawerPoints(len(r.players))
	}
	r.winners = append(r.winners, guesser.ClientID)

	log.Info().Str("room", r.name).Str("username", guesser.Username).Int("points", points).
		Dur("elapsed", elapsed).Int("guessed", len(r.winners)).Msg("[EvaluateGuess] correct guess")

	r.broadcastLocked(r.playersListLocked())
	r.broadcastLocked(internal.Announcement{
		Message:          fmt.Sprintf("%s has guessed it!", guesser.Username),
		Timestamp:        time.Now().UnixMilli(),
		AnnouncementType: internal.AnnouncementPlayerGuessedWord,
	})

	if len(r.winners) >= len(r.players)-1 {
		r.broadcastLocked(internal.Announcement{
			Message:          "Everybody guessed it! New round is starting...",
			Timestamp:        time.Now().UnixMilli(),
			AnnouncementType: internal.AnnouncementEverybodyGuessedIt,
		})
		r.fire(r.event(eventEveryoneGuessed))
	}
	return true
}

// SetWordAndAdvance records the word chosen by clientID and starts drawing.
// It is a no-op unless clientID is the drawer of the round being set up.
func (r *Room) SetWordAndAdvance(clientID, word string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	word = strings.TrimSpace(word)
	if r.closed || r.phase != internal.PhaseNewRound || word == "" || !r.isDrawerLocked(clientID) {
		return false
	}
	r.word = word
	log.Info().Str("room", r.name).Str("drawer", r.drawerName()).Msg("[SetWordAndAdvance] word chosen")
	return r.fire(r.event(eventWordChosen))
}
