package internal

import (
	"errors"
	"time"
)

const (
	MinRoomSize = 2
	MaxRoomSize = 8

	// Guess scoring. A correct guess is worth GuessScoreBase plus up to
	// GuessScoreTimeBonus scaled by the fraction of drawing time left.
	GuessScoreBase        = 50
	GuessScoreTimeBonus   = 50
	DrawerScorePerGuess   = 50
	PenaltyNobodyGuessed  = 50
	CandidateWordsPerTurn = 3
)

type GamePhase string

const (
	PhaseLobby            GamePhase = "lobby"
	PhaseCountdownToStart GamePhase = "countdown_to_start"
	PhaseNewRound         GamePhase = "new_round"
	PhaseDrawing          GamePhase = "drawing"
	PhaseRoundReveal      GamePhase = "round_reveal"
)

// DefaultPhaseDurations are the lengths of each phase when nothing overrides them.
var DefaultPhaseDurations = map[GamePhase]time.Duration{
	PhaseLobby:            120 * time.Second,
	PhaseCountdownToStart: 10 * time.Second,
	PhaseNewRound:         20 * time.Second,
	PhaseDrawing:          60 * time.Second,
	PhaseRoundReveal:      10 * time.Second,
}

func (p GamePhase) Valid() bool {
	_, ok := DefaultPhaseDurations[p]
	return ok
}

var (
	ErrConnClosed     = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
	ErrMalformedFrame = errors.New("malformed frame")
)
