package internal

import (
	"context"
	"time"
)

// GameTimer is the handle for one phase's countdown. A room keeps at most
// one; replacing it cancels the previous one.
type GameTimer struct {
	Phase     GamePhase
	StartTime time.Time
	Duration  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

func NewGameTimer(parent context.Context, phase GamePhase, duration time.Duration) *GameTimer {
	ctx, cancel := context.WithTimeout(parent, duration)
	return &GameTimer{
		Phase:     phase,
		StartTime: time.Now(),
		Duration:  duration,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Remaining is the time left before the phase expires, never negative.
func (t *GameTimer) Remaining() time.Duration {
	return max(t.Duration-time.Since(t.StartTime), 0)
}

func (t *GameTimer) Done() <-chan struct{} { return t.ctx.Done() }

// Expired reports whether the timer ran its full duration rather than being cancelled.
func (t *GameTimer) Expired() bool {
	return t.ctx.Err() == context.DeadlineExceeded
}

func (t *GameTimer) Cancel() { t.cancel() }
