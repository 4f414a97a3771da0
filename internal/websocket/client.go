package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/scribble-server/internal"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

// Client adapts a gorilla connection to internal.Conn. Send only queues;
// writePump owns every data write to the socket.
type Client struct {
	id      string
	ws      *websocket.Conn
	send    chan []byte
	done    chan struct{}
	limiter *rate.Limiter

	active    atomic.Bool
	closeOnce sync.Once
}

func NewClient(id string, ws *websocket.Conn, limiter *rate.Limiter) *Client {
	c := &Client{
		id:      id,
		ws:      ws,
		send:    make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
		limiter: limiter,
	}
	c.active.Store(true)
	return c
}

func (c *Client) ID() string { return c.id }

func (c *Client) IsActive() bool { return c.active.Load() }

func (c *Client) Send(data []byte) error {
	if !c.active.Load() {
		return internal.ErrConnClosed
	}
	select {
	case <-c.done:
		return internal.ErrConnClosed
	case c.send <- data:
		return nil
	default:
		return internal.ErrSendBufferFull
	}
}

func (c *Client) Close() error {
	return c.CloseWith(websocket.CloseNormalClosure, "")
}

// CloseWith sends a close frame with code and reason, then drops the socket.
// Only the first call has any effect.
func (c *Client) CloseWith(code int, reason string) error {
	var err error
	c.closeOnce.Do(func() {
		c.active.Store(false)
		close(c.done)
		msg := websocket.FormatCloseMessage(code, reason)
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		err = c.ws.Close()
	})
	return err
}

// allow reports whether another inbound frame fits the client's budget.
func (c *Client) allow() bool {
	return c.limiter == nil || c.limiter.Allow()
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug().Err(err).Str("client", c.id).Msg("[writePump] write failed")
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump hands every text frame to handle until the socket fails or closes.
func (c *Client) readPump(handle func(data []byte)) {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure, websocket.CloseNoStatusReceived) {
				log.Debug().Err(err).Str("client", c.id).Msg("[readPump] read error")
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if !c.allow() {
			log.Debug().Str("client", c.id).Msg("[readPump] frame dropped, rate limit exceeded")
			continue
		}
		handle(data)
	}
}
