package game

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/scribble-server/internal"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

var timeNow = time.Now

// startPhaseTimer replaces the room's timer with one for the current phase,
// announces the phase with its full duration and starts the tick loop.
// Must be called with r.mu held.
func (r *Room) startPhaseTimer() {
	r.cancelPhaseTimer()

	duration := r.cfg.duration(r.phase)
	timer := internal.NewGameTimer(r.ctx, r.phase, duration)
	r.timer = timer

	phase := r.phase
	r.broadcastLocked(internal.PhaseChange{
		Phase:         &phase,
		Timestamp:     duration.Milliseconds(),
		DrawingPlayer: r.drawerName(),
	})
	log.Debug().Str("room", r.name).Str("phase", string(phase)).Dur("duration", duration).
		Msg("[startPhaseTimer] timer started")

	go r.runPhaseTimer(timer)
}

func (r *Room) runPhaseTimer(timer *internal.GameTimer) {
	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.tick(timer)

		case <-timer.Done():
			if !timer.Expired() {
				log.Debug().Str("room", r.name).Str("phase", string(timer.Phase)).
					Msg("[runPhaseTimer] timer cancelled before expiry")
				return
			}
			r.expire(timer)
			return
		}
	}
}

// tick rebroadcasts the remaining time. A tick from a replaced timer is dropped.
func (r *Room) tick(timer *internal.GameTimer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.timer != timer {
		return
	}
	r.broadcastLocked(internal.PhaseChange{
		Timestamp:     timer.Remaining().Milliseconds(),
		DrawingPlayer: r.drawerName(),
	})
}

func (r *Room) expire(timer *internal.GameTimer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.timer != timer {
		return
	}
	r.timer = nil
	log.Debug().Str("room", r.name).Str("phase", string(timer.Phase)).Msg("[expire] phase timer expired")
	r.fire(r.event(eventTimerExpired))
}

// cancelPhaseTimer stops the running timer, if any. Must be called with r.mu held.
func (r *Room) cancelPhaseTimer() {
	if r.timer == nil {
		return
	}
	r.timer.Cancel()
	r.timer = nil
}
