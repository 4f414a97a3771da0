package game

import (
	"cmp"
	"slices"
	"time"

	"github.com/scythe504/scribble-server/internal"
)

// GuessPoints rewards earlier guesses: a base score plus a bonus
// proportional to the fraction of drawing time still left.
func GuessPoints(elapsed, total time.Duration) int {
	if total <= 0 {
		return internal.GuessScoreBase
	}
	fraction := 1 - float64(elapsed)/float64(total)
	fraction = min(max(fraction, 0), 1)
	return internal.GuessScoreBase + int(float64(internal.GuessScoreTimeBonus)*fraction)
}

// DrawerPoints is the drawer's share for one correct guess, split evenly
// across the players present.
func DrawerPoints(players int) int {
	if players <= 0 {
		return 0
	}
	return internal.DrawerScorePerGuess / players
}

// RankPlayers orders players by descending score, keeping join order for
// ties, and numbers them from 1.
func RankPlayers(players []*internal.Player) []internal.PlayerData {
	ranked := make([]internal.PlayerData, 0, len(players))
	for _, p := range players {
		ranked = append(ranked, p.ToPlayerData())
	}
	slices.SortStableFunc(ranked, func(a, b internal.PlayerData) int {
		return cmp.Compare(b.Score, a.Score)
	})
	for idx := range ranked {
		ranked[idx].Rank = idx + 1
	}
	return ranked
}
