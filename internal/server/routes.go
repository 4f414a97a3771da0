package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/scribble-server/internal"
	"github.com/scythe504/scribble-server/internal/game"
	"github.com/scythe504/scribble-server/internal/session"
)

const (
	CreateRoomRoute = "/api/createRoom"
	GetRoomsRoute   = "/api/getRooms"
	JoinRoomRoute   = "/api/joinRoom"
	GameSocketRoute = "/ws/draw"

	ParamSearchQuery = "searchQuery"
	ParamUserName    = "userName"
	ParamRoomName    = "roomName"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)
	r.Use(session.Middleware)

	r.HandleFunc("/", s.HelloWorldHandler).Methods(http.MethodGet)

	r.HandleFunc(CreateRoomRoute, s.CreateRoomHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc(GetRoomsRoute, s.GetRoomsHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc(JoinRoomRoute, s.JoinRoomHandler).Methods(http.MethodGet, http.MethodOptions)

	r.Handle(GameSocketRoute, s.ws)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
		if s.allowedOrigin == "*" {
			// Credentials not allowed with wildcard origins
			w.Header().Set("Access-Control-Allow-Credentials", "false")
		} else {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		// If it's a websocket upgrade, skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Hello World",
		"rooms":   s.rooms.Len(),
		"clients": s.registry.Len(),
	})
}

func (s *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req internal.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debug().Err(err).Msg("[CreateRoomHandler] malformed request body")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if _, ok := s.rooms.Get(req.Name); ok {
		writeJSON(w, http.StatusOK, internal.BasicApiResponse{Message: "Room already exists."})
		return
	}
	if err := internal.ValidateMaxPlayers(req.MaxPlayers); err != nil {
		writeJSON(w, http.StatusOK, internal.BasicApiResponse{Message: sentence(err.Error())})
		return
	}

	_, err := s.rooms.Create(req.Name, req.MaxPlayers)
	switch {
	case errors.Is(err, game.ErrRoomExists):
		writeJSON(w, http.StatusOK, internal.BasicApiResponse{Message: "Room already exists."})
		return
	case errors.Is(err, game.ErrInvalidRoomName):
		writeJSON(w, http.StatusOK, internal.BasicApiResponse{Message: "Room name must not be empty."})
		return
	case err != nil:
		log.Error().Err(err).Str("room", req.Name).Msg("[CreateRoomHandler] failed to create room")
		writeJSON(w, http.StatusOK, internal.BasicApiResponse{Message: "Could not create room."})
		return
	}

	writeJSON(w, http.StatusOK, internal.BasicApiResponse{Successful: true})
}

func (s *Server) GetRoomsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has(ParamSearchQuery) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.rooms.Search(query.Get(ParamSearchQuery)))
}

// JoinRoomHandler checks whether userName could join roomName right now.
func (s *Server) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	userName := query.Get(ParamUserName)
	roomName := query.Get(ParamRoomName)
	if userName == "" || roomName == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	room, ok := s.rooms.Get(roomName)
	if !ok {
		writeJSON(w, http.StatusOK, internal.BasicApiResponse{Message: "Room not found."})
		return
	}

	switch err := room.CheckJoin(userName); {
	case errors.Is(err, game.ErrUsernameTaken):
		writeJSON(w, http.StatusOK, internal.BasicApiResponse{Message: "A player with this username already joined."})
	case errors.Is(err, game.ErrRoomFull):
		writeJSON(w, http.StatusOK, internal.BasicApiResponse{Message: "This room is already full."})
	case errors.Is(err, game.ErrRoomClosed):
		writeJSON(w, http.StatusOK, internal.BasicApiResponse{Message: "Room not found."})
	case err != nil:
		writeJSON(w, http.StatusOK, internal.BasicApiResponse{Message: err.Error()})
	default:
		writeJSON(w, http.StatusOK, internal.BasicApiResponse{Successful: true})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("[writeJSON] error encoding response")
	}
}

// sentence capitalises msg and ends it with a period.
func sentence(msg string) string {
	if msg == "" {
		return msg
	}
	return fmt.Sprintf("%s%s.", strings.ToUpper(msg[:1]), msg[1:])
}
