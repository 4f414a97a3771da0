package game

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/scribble-server/internal"
)

// =============================================================================
// DRAWING SYSTEM
// =============================================================================

// RelayStroke forwards a stroke segment from the drawer to everyone else and
// keeps it for late joiners. raw is forwarded as received.
func (r *Room) RelayStroke(clientID string, data internal.DrawData, raw []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.phase != internal.PhaseDrawing || !r.isDrawerLocked(clientID) {
		return false
	}
	r.recordStrokeLocked(data, raw)
	r.broadcastRawExceptLocked(raw, clientID)
	return true
}

// RecordStroke appends a stroke segment to the replay buffer without relaying it.
func (r *Room) RecordStroke(data internal.DrawData, raw []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recordStrokeLocked(data, raw)
}

func (r *Room) recordStrokeLocked(data internal.DrawData, raw []byte) {
	if r.closed {
		return
	}
	r.strokes = append(r.strokes, strokeRecord{
		data: data,
		raw:  append(json.RawMessage(nil), raw...),
	})
}

// UndoStroke forwards the drawer's undo to everyone else and drops the last
// stroke from the replay buffer.
func (r *Room) UndoStroke(clientID string, raw []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.phase != internal.PhaseDrawing || !r.isDrawerLocked(clientID) {
		return false
	}
	r.trimLastStroke()
	r.broadcastRawExceptLocked(raw, clientID)
	return true
}

// trimLastStroke removes everything from the last DOWN segment onward.
func (r *Room) trimLastStroke() {
	for i := len(r.strokes) - 1; i >= 0; i-- {
		if r.strokes[i].data.MotionEvent == internal.MotionDown {
			r.strokes = r.strokes[:i]
			return
		}
	}
	r.strokes = nil
}

// closeOpenStrokeLocked ends a stroke the drawer left open when the round
// ended, so every canvas reaches the same final state.
func (r *Room) closeOpenStrokeLocked() {
	if len(r.strokes) == 0 {
		return
	}
	last := r.strokes[len(r.strokes)-1].data
	if !last.InProgress() {
		return
	}

	end := last.Finished()
	raw, err := encode(end)
	if err != nil {
		return
	}
	r.strokes = append(r.strokes, strokeRecord{data: end, raw: raw})
	r.broadcastRawLocked(raw)
	log.Debug().Str("room", r.name).Msg("[closeOpenStroke] synthesized stroke end")
}

func (r *Room) replayLocked() internal.RoundDrawInfo {
	data := make([]json.RawMessage, 0, len(r.strokes))
	for _, s := range r.strokes {
		data = append(data, s.raw)
	}
	return internal.RoundDrawInfo{Data: data}
}

func (r *Room) playersListLocked() internal.PlayersList {
	return internal.PlayersList{Players: RankPlayers(r.players)}
}

// =============================================================================
// BROADCASTING & MESSAGING
// =============================================================================

func encode(p internal.Payload) ([]byte, error) {
	data, err := internal.Encode(p)
	if err != nil {
		log.Error().Err(err).Str("type", string(p.MessageType())).Msg("[encode] failed to encode payload")
		return nil, err
	}
	return data, nil
}

// Broadcast sends p to every present player with a live connection.
func (r *Room) Broadcast(p internal.Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastLocked(p)
}

// BroadcastExcept is Broadcast minus the player with clientID.
func (r *Room) BroadcastExcept(p internal.Payload, clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastExceptLocked(p, clientID)
}

func (r *Room) broadcastLocked(p internal.Payload) {
	r.broadcastExceptLocked(p, "")
}

func (r *Room) broadcastExceptLocked(p internal.Payload, clientID string) {
	data, err := encode(p)
	if err != nil {
		return
	}
	r.broadcastRawExceptLocked(data, clientID)
}

func (r *Room) broadcastRawLocked(data []byte) {
	r.broadcastRawExceptLocked(data, "")
}

// broadcastRawExceptLocked never blocks: Conn.Send only queues. A failed
// recipient is logged and skipped.
func (r *Room) broadcastRawExceptLocked(data []byte, clientID string) {
	if r.closed {
		return
	}
	for _, p := range r.players {
		if clientID != "" && p.ClientID == clientID {
			continue
		}
		if err := p.Send(data); err != nil {
			log.Debug().Err(err).Str("room", r.name).Str("client", p.ClientID).
				Msg("[Broadcast] send failed, skipping player")
		}
	}
}

func (r *Room) sendLocked(player *internal.Player, p internal.Payload) {
	data, err := encode(p)
	if err != nil {
		return
	}
	if err := player.Send(data); err != nil {
		log.Debug().Err(err).Str("room", r.name).Str("client", player.ClientID).
			Msg("[sendLocked] send failed")
	}
}
