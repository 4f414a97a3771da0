package websocket

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/scribble-server/internal"
	"github.com/scythe504/scribble-server/internal/game"
	"github.com/scythe504/scribble-server/internal/session"
	"golang.org/x/time/rate"
)

type Options struct {
	// AllowedOrigin restricts the Origin header of upgrade requests. Empty or "*" allows any.
	AllowedOrigin string
	// FramesPerSecond and FrameBurst size each connection's inbound token bucket.
	FramesPerSecond float64
	FrameBurst      int
}

func DefaultOptions() Options {
	return Options{
		AllowedOrigin:   "*",
		FramesPerSecond: 60,
		FrameBurst:      120,
	}
}

// =============================================================================
// WEBSOCKET CONNECTION HANDLING
// =============================================================================

// Handler upgrades game connections and routes their frames to rooms.
type Handler struct {
	rooms    *game.Directory
	registry *game.Registry
	opts     Options
	upgrader websocket.Upgrader
}

func NewHandler(rooms *game.Directory, registry *game.Registry, opts Options) *Handler {
	h := &Handler{
		rooms:    rooms,
		registry: registry,
		opts:     opts,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.opts.AllowedOrigin == "" || h.opts.AllowedOrigin == "*" {
		return true
	}
	return r.Header.Get("Origin") == h.opts.AllowedOrigin
}

func (h *Handler) newLimiter() *rate.Limiter {
	if h.opts.FramesPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(h.opts.FramesPerSecond), max(h.opts.FrameBurst, 1))
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Upgrade writes its own response, so a freshly issued session cookie
	// has to be handed over explicitly.
	var header http.Header
	if cookies := w.Header().Values("Set-Cookie"); len(cookies) > 0 {
		header = http.Header{"Set-Cookie": cookies}
	}

	ws, err := h.upgrader.Upgrade(w, r, header)
	if err != nil {
		log.Debug().Err(err).Msg("[ServeHTTP] websocket upgrade failed")
		return
	}

	sess, ok := session.FromContext(r.Context())
	if !ok {
		log.Info().Str("remote", r.RemoteAddr).Msg("[ServeHTTP] no session, closing connection")
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "No session."),
			time.Now().Add(writeWait))
		_ = ws.Close()
		return
	}

	client := NewClient(sess.ClientID, ws, h.newLimiter())
	if prev := h.registry.Register(sess.ClientID, client); prev != nil {
		log.Info().Str("client", sess.ClientID).Msg("[ServeHTTP] replacing previous connection")
		_ = prev.Close()
	}

	c := &connection{handler: h, client: client, clientID: sess.ClientID}
	go client.writePump()
	client.readPump(c.handle)
	c.disconnect()
}

// connection is the dispatcher state of one socket. handle and disconnect
// both run on the socket's read goroutine.
type connection struct {
	handler  *Handler
	client   *Client
	clientID string

	disconnectOnce sync.Once
}

func (c *connection) handle(data []byte) {
	payload, err := internal.Decode(data)
	if err != nil {
		log.Debug().Err(err).Str("client", c.clientID).Msg("[handle] dropping malformed frame")
		return
	}

	switch p := payload.(type) {
	case *internal.JoinRoomHandshake:
		c.join(p)
	case *internal.DrawData:
		c.draw(p, data)
	case *internal.DrawAction:
		c.drawAction(p, data)
	case *internal.ChosenWord:
		c.chooseWord(p)
	case *internal.ChatMessage:
		c.chat(p)
	case *internal.Ping:
		c.reply(internal.Ping{})
	case *internal.DisconnectRequest:
		c.disconnect()
	default:
		log.Debug().Str("client", c.clientID).Str("type", string(payload.MessageType())).
			Msg("[handle] ignoring unsupported message")
	}
}

func (c *connection) join(p *internal.JoinRoomHandshake) {
	h := c.handler
	room, ok := h.rooms.Get(p.RoomName)
	if !ok {
		log.Info().Str("client", c.clientID).Str("room", p.RoomName).Msg("[join] room not found")
		c.reply(internal.GameError{ErrorType: internal.ErrorRoomNotFound})
		return
	}
	if p.ClientID != "" && p.ClientID != c.clientID {
		log.Debug().Str("client", c.clientID).Str("claimed", p.ClientID).
			Msg("[join] handshake client id differs from session, using session")
	}

	if _, prev, ok := h.registry.Lookup(c.clientID); ok && prev != nil && prev != room {
		prev.RemovePlayer(c.clientID)
	}

	_, err := room.AddPlayer(c.clientID, p.UserName, c.client)
	switch {
	case errors.Is(err, game.ErrRoomFull):
		c.reply(internal.GameError{ErrorType: internal.ErrorRoomFull})
		return
	case errors.Is(err, game.ErrRoomClosed):
		c.reply(internal.GameError{ErrorType: internal.ErrorRoomNotFound})
		return
	case errors.Is(err, game.ErrUsernameTaken):
		log.Info().Str("client", c.clientID).Str("room", p.RoomName).Str("username", p.UserName).
			Msg("[join] username already present, not admitting")
		return
	case err != nil:
		log.Error().Err(err).Str("client", c.clientID).Str("room", p.RoomName).Msg("[join] failed to add player")
		return
	}

	if !h.registry.SetRoom(c.clientID, c.client, room) {
		log.Debug().Str("client", c.clientID).Msg("[join] connection replaced while joining")
	}
}

// room is the room this connection joined, if it is still the client's live connection.
func (c *connection) room() *game.Room {
	conn, room, ok := c.handler.registry.Lookup(c.clientID)
	if !ok || room == nil || conn != internal.Conn(c.client) {
		return nil
	}
	return room
}

func (c *connection) draw(p *internal.DrawData, raw []byte) {
	if room := c.room(); room != nil {
		room.RelayStroke(c.clientID, *p, raw)
	}
}

func (c *connection) drawAction(p *internal.DrawAction, raw []byte) {
	if p.Action != internal.ActionUndo {
		return
	}
	if room := c.room(); room != nil {
		room.UndoStroke(c.clientID, raw)
	}
}

func (c *connection) chooseWord(p *internal.ChosenWord) {
	if room := c.room(); room != nil {
		room.SetWordAndAdvance(c.clientID, p.ChosenWord)
	}
}

func (c *connection) chat(p *internal.ChatMessage) {
	room := c.room()
	if room == nil {
		return
	}
	name, ok := room.PlayerName(c.clientID)
	if !ok {
		return
	}
	msg := *p
	msg.From = name
	msg.RoomName = room.Name()
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	if room.EvaluateGuess(c.clientID, msg) {
		return
	}
	room.Broadcast(msg)
}

func (c *connection) reply(p internal.Payload) {
	data, err := internal.Encode(p)
	if err != nil {
		log.Error().Err(err).Str("client", c.clientID).Msg("[reply] failed to encode")
		return
	}
	if err := c.client.Send(data); err != nil {
		log.Debug().Err(err).Str("client", c.clientID).Msg("[reply] send failed")
	}
}

// disconnect runs the leave path once per socket, whichever side closed it.
func (c *connection) disconnect() {
	c.disconnectOnce.Do(func() {
		room, ok := c.handler.registry.Unregister(c.clientID, c.client)
		if ok && room == nil {
			// never bound, but a seat may still carry this client id
			room, _ = c.handler.rooms.RoomWithClient(c.clientID)
		}
		if ok && room != nil {
			room.RemovePlayer(c.clientID)
		}
		_ = c.client.Close()
		log.Info().Str("client", c.clientID).Msg("[disconnect] connection closed")
	})
}
