package game

import (
	"context"
	"math/rand"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/scribble-server/internal"
	"github.com/scythe504/scribble-server/internal/utils"
)

// =============================================================================
// PHASE STATE MACHINE
// =============================================================================

type eventKind int

const (
	eventTimerExpired eventKind = iota
	eventWordChosen
	eventEveryoneGuessed
	eventPlayerJoined
	eventPlayerLeft
)

type roomEvent struct {
	kind       eventKind
	players    int
	maxPlayers int
}

type effect int

const (
	effectCancelTimer effect = iota
	effectShufflePlayers
	effectResetRound
	effectClearDrawer
	effectDrawCandidates
	effectAdvanceDrawer
	effectSendCandidates
	effectPickWord
	effectSendGameState
	effectPenalizeDrawer
	effectBroadcastPlayers
	effectRevealWord
	effectCloseStroke
	effectAnnouncePhase
	effectStartTimer
)

// nextState is the whole transition table. It has no side effects: the
// caller commits the returned phase and then runs the effects in order.
func nextState(current internal.GamePhase, ev roomEvent) (internal.GamePhase, []effect, bool) {
	var (
		next internal.GamePhase
		pre  []effect
	)

	switch ev.kind {
	case eventTimerExpired:
		switch current {
		case internal.PhaseLobby:
			next = internal.PhaseNewRound
		case internal.PhaseCountdownToStart:
			next = internal.PhaseRoundReveal
		case internal.PhaseNewRound:
			next = internal.PhaseDrawing
		case internal.PhaseDrawing:
			next = internal.PhaseRoundReveal
		case internal.PhaseRoundReveal:
			if ev.players >= internal.MinRoomSize {
				next = internal.PhaseNewRound
			} else {
				next = internal.PhaseLobby
			}
		default:
			return current, nil, false
		}

	case eventWordChosen:
		if current != internal.PhaseNewRound {
			return current, nil, false
		}
		next = internal.PhaseDrawing

	case eventEveryoneGuessed:
		if current != internal.PhaseDrawing {
			return current, nil, false
		}
		next = internal.PhaseRoundReveal

	case eventPlayerJoined:
		switch {
		case ev.players == 1 && current != internal.PhaseLobby:
			next = internal.PhaseLobby
		case ev.players == internal.MinRoomSize && current == internal.PhaseLobby:
			next = internal.PhaseCountdownToStart
			pre = []effect{effectShufflePlayers}
		case current == internal.PhaseCountdownToStart && ev.players == ev.maxPlayers:
			next = internal.PhaseNewRound
			pre = []effect{effectShufflePlayers}
		default:
			return current, nil, false
		}

	case eventPlayerLeft:
		if ev.players != 1 || current == internal.PhaseLobby {
			return current, nil, false
		}
		next = internal.PhaseLobby

	default:
		return current, nil, false
	}

	return next, append(pre, entryEffects(current, next)...), true
}

func entryEffects(from, to internal.GamePhase) []effect {
	switch to {
	case internal.PhaseLobby:
		return []effect{effectCancelTimer, effectResetRound, effectClearDrawer, effectAnnouncePhase, effectBroadcastPlayers}
	case internal.PhaseCountdownToStart:
		return []effect{effectCancelTimer, effectStartTimer}
	case internal.PhaseNewRound:
		return []effect{effectCancelTimer, effectResetRound, effectDrawCandidates, effectAdvanceDrawer,
			effectBroadcastPlayers, effectSendCandidates, effectStartTimer}
	case internal.PhaseDrawing:
		return []effect{effectCancelTimer, effectPickWord, effectSendGameState, effectStartTimer}
	case internal.PhaseRoundReveal:
		effects := []effect{effectCancelTimer, effectPenalizeDrawer, effectBroadcastPlayers, effectRevealWord}
		if from == internal.PhaseDrawing {
			effects = append(effects, effectCloseStroke)
		}
		return append(effects, effectStartTimer)
	}
	return nil
}

func (r *Room) event(kind eventKind) roomEvent {
	return roomEvent{kind: kind, players: len(r.players), maxPlayers: r.maxPlayers}
}

// fire feeds ev through the transition table, commits the new phase and runs
// its entry effects. Must be called with r.mu held.
func (r *Room) fire(ev roomEvent) bool {
	if r.closed {
		return false
	}
	next, effects, ok := nextState(r.phase, ev)
	if !ok {
		return false
	}

	prev := r.phase
	r.phase = next
	log.Info().Str("room", r.name).Str("from", string(prev)).Str("to", string(next)).
		Int("players", len(r.players)).Msg("[fire] phase changed")

	for _, e := range effects {
		r.apply(e)
	}
	return true
}

func (r *Room) apply(e effect) {
	switch e {
	case effectCancelTimer:
		r.cancelPhaseTimer()

	case effectShufflePlayers:
		rand.Shuffle(len(r.players), func(i, j int) {
			r.players[i], r.players[j] = r.players[j], r.players[i]
		})
		r.syncDrawerIndex()

	case effectResetRound:
		r.word = ""
		r.candidates = nil
		r.winners = nil
		r.strokes = nil

	case effectClearDrawer:
		if r.drawer != nil {
			r.drawer.IsDrawing = false
		}
		r.drawer = nil
		r.drawerIndex = 0
		clear(r.drawnThisCycle)

	case effectDrawCandidates:
		r.candidates = r.randomWords(r.cfg.WordCount)

	case effectAdvanceDrawer:
		r.advanceDrawer()

	case effectSendCandidates:
		if r.drawer != nil && len(r.candidates) > 0 {
			r.sendLocked(r.drawer, internal.NewWords{NewWords: r.candidates})
		}

	case effectPickWord:
		r.pickWord()
		r.roundStart = timeNow()

	case effectSendGameState:
		drawerID := ""
		if r.drawer != nil {
			drawerID = r.drawer.ClientID
			r.sendLocked(r.drawer, internal.GameState{DrawingPlayer: r.drawer.Username, Word: r.word})
		}
		r.broadcastExceptLocked(internal.GameState{
			DrawingPlayer: r.drawerName(),
			Word:          utils.GetMaskedWord(r.word),
		}, drawerID)

	case effectPenalizeDrawer:
		if len(r.winners) == 0 && r.drawer != nil {
			r.drawer.Score -= internal.PenaltyNobodyGuessed
		}

	case effectBroadcastPlayers:
		r.broadcastLocked(r.playersListLocked())

	case effectRevealWord:
		if r.word != "" {
			r.broadcastLocked(internal.GameState{DrawingPlayer: r.drawerName(), Word: r.word})
		}

	case effectCloseStroke:
		r.closeOpenStrokeLocked()

	case effectAnnouncePhase:
		r.broadcastLocked(r.currentPhaseLocked())

	case effectStartTimer:
		r.startPhaseTimer()
	}
}

// advanceDrawer hands the pen to the next seat, round-robin, skipping anyone
// who already drew in the current cycle. A cycle ends once every present
// player has drawn.
func (r *Room) advanceDrawer() {
	if r.drawer != nil {
		r.drawer.IsDrawing = false
	}
	n := len(r.players)
	if n == 0 {
		r.drawer = nil
		return
	}

	start := r.drawerIndex
	if seat := r.seatOf(r.drawer); seat >= 0 {
		start = seat + 1
	}

	for pass := 0; pass < 2; pass++ {
		for i := 0; i < n; i++ {
			seat := (start + i) % n
			p := r.players[seat]
			if r.drawnThisCycle[p.ClientID] {
				continue
			}
			r.drawnThisCycle[p.ClientID] = true
			r.drawer = p
			r.drawerIndex = seat
			p.IsDrawing = true
			return
		}
		clear(r.drawnThisCycle)
	}
}

// pickWord keeps an explicitly chosen word, otherwise falls back to a random
// candidate and finally to the word source itself.
func (r *Room) pickWord() {
	if r.word != "" {
		return
	}
	if len(r.candidates) > 0 {
		r.word = r.candidates[rand.Intn(len(r.candidates))]
		return
	}
	if words := r.randomWords(1); len(words) > 0 {
		r.word = words[0]
		return
	}
	log.Error().Str("room", r.name).Msg("[pickWord] no word available for this round")
}

func (r *Room) randomWords(n int) []string {
	if r.words == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(r.ctx, r.cfg.WordTimeout)
	defer cancel()

	words, err := r.words.RandomWords(ctx, n)
	if err != nil {
		log.Error().Err(err).Str("room", r.name).Msg("[randomWords] word source failed")
		return nil
	}
	return words
}
