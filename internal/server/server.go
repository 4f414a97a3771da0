package server

import (
	"net/http"
	"time"

	"github.com/scythe504/scribble-server/internal/game"
	"github.com/scythe504/scribble-server/internal/websocket"
)

type Server struct {
	rooms         *game.Directory
	registry      *game.Registry
	ws            *websocket.Handler
	allowedOrigin string
}

func New(rooms *game.Directory, registry *game.Registry, opts websocket.Options) *Server {
	origin := opts.AllowedOrigin
	if origin == "" {
		origin = "*"
	}
	return &Server{
		rooms:         rooms,
		registry:      registry,
		ws:            websocket.NewHandler(rooms, registry, opts),
		allowedOrigin: origin,
	}
}

// NewServer wires the HTTP surface for addr. Write timeouts are left to the
// websocket pumps, which set their own deadlines.
func NewServer(addr string, rooms *game.Directory, registry *game.Registry, opts websocket.Options) *http.Server {
	s := New(rooms, registry, opts)
	return &http.Server{
		Addr:              addr,
		Handler:           s.RegisterRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}
}
