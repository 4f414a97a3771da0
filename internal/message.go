package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type MessageType string

const (
	TypeChatMessage       MessageType = "chat_message"
	TypeDrawData          MessageType = "draw_data"
	TypeAnnouncement      MessageType = "announcement"
	TypeJoinRoomHandshake MessageType = "join_room_handshake"
	TypeGameError         MessageType = "game_error"
	TypePhaseChange       MessageType = "phase_change"
	TypeChosenWord        MessageType = "chosen_word"
	TypeGameState         MessageType = "game_state"
	TypeNewWords          MessageType = "new_words"
	TypePlayersList       MessageType = "players_list"
	TypeRoundDrawInfo     MessageType = "round_draw_info"
	TypePing              MessageType = "ping"
	TypeDisconnectRequest MessageType = "disconnect_request"
	TypeDrawAction        MessageType = "draw_action"
)

// Payload is one variant of the tagged wire envelope.
type Payload interface {
	MessageType() MessageType
}

type ChatMessage struct {
	From      string `json:"from"`
	RoomName  string `json:"roomName"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type AnnouncementType string

const (
	AnnouncementPlayerGuessedWord  AnnouncementType = "PLAYER_GUESSED_WORD"
	AnnouncementPlayerJoined       AnnouncementType = "PLAYER_JOINED"
	AnnouncementPlayerLeft         AnnouncementType = "PLAYER_LEFT"
	AnnouncementEverybodyGuessedIt AnnouncementType = "EVERYBODY_GUESSED_IT"
)

type Announcement struct {
	Message          string           `json:"message"`
	Timestamp        int64            `json:"timestamp"`
	AnnouncementType AnnouncementType `json:"announcementType"`
}

type JoinRoomHandshake struct {
	UserName string `json:"userName"`
	RoomName string `json:"roomName"`
	ClientID string `json:"clientId"`
}

type GameErrorType string

const (
	ErrorRoomNotFound GameErrorType = "ROOM_NOT_FOUND"
	ErrorRoomFull     GameErrorType = "ROOM_FULL"
)

type GameError struct {
	ErrorType GameErrorType `json:"errorType"`
}

// PhaseChange carries the phase only on the first notice of a phase; the
// countdown ticks that follow leave it out.
type PhaseChange struct {
	Phase         *GamePhase `json:"phase,omitempty"`
	Timestamp     int64      `json:"timestamp"`
	DrawingPlayer string     `json:"drawingPlayer,omitempty"`
}

type ChosenWord struct {
	ChosenWord string `json:"chosenWord"`
	RoomName   string `json:"roomName"`
}

type GameState struct {
	DrawingPlayer string `json:"drawingPlayer"`
	Word          string `json:"word"`
}

type NewWords struct {
	NewWords []string `json:"newWords"`
}

type PlayerData struct {
	UserName  string `json:"userName"`
	IsDrawing bool   `json:"isDrawing"`
	Score     int    `json:"score"`
	Rank      int    `json:"rank"`
}

type PlayersList struct {
	Players []PlayerData `json:"players"`
}

type RoundDrawInfo struct {
	Data []json.RawMessage `json:"data"`
}

type Ping struct{}

type DisconnectRequest struct{}

// Unrecognized is what an unknown or unsupported tag decodes to.
type Unrecognized struct {
	Type MessageType `json:"-"`
}

func (ChatMessage) MessageType() MessageType       { return TypeChatMessage }
func (DrawData) MessageType() MessageType          { return TypeDrawData }
func (Announcement) MessageType() MessageType      { return TypeAnnouncement }
func (JoinRoomHandshake) MessageType() MessageType { return TypeJoinRoomHandshake }
func (GameError) MessageType() MessageType         { return TypeGameError }
func (PhaseChange) MessageType() MessageType       { return TypePhaseChange }
func (ChosenWord) MessageType() MessageType        { return TypeChosenWord }
func (GameState) MessageType() MessageType         { return TypeGameState }
func (NewWords) MessageType() MessageType          { return TypeNewWords }
func (PlayersList) MessageType() MessageType       { return TypePlayersList }
func (RoundDrawInfo) MessageType() MessageType     { return TypeRoundDrawInfo }
func (Ping) MessageType() MessageType              { return TypePing }
func (DisconnectRequest) MessageType() MessageType { return TypeDisconnectRequest }
func (DrawAction) MessageType() MessageType        { return TypeDrawAction }
func (u Unrecognized) MessageType() MessageType    { return u.Type }

var payloadFactories = map[MessageType]func() Payload{
	TypeChatMessage:       func() Payload { return &ChatMessage{} },
	TypeDrawData:          func() Payload { return &DrawData{} },
	TypeAnnouncement:      func() Payload { return &Announcement{} },
	TypeJoinRoomHandshake: func() Payload { return &JoinRoomHandshake{} },
	TypeGameError:         func() Payload { return &GameError{} },
	TypePhaseChange:       func() Payload { return &PhaseChange{} },
	TypeChosenWord:        func() Payload { return &ChosenWord{} },
	TypeGameState:         func() Payload { return &GameState{} },
	TypeNewWords:          func() Payload { return &NewWords{} },
	TypePlayersList:       func() Payload { return &PlayersList{} },
	TypeRoundDrawInfo:     func() Payload { return &RoundDrawInfo{} },
	TypePing:              func() Payload { return &Ping{} },
	TypeDisconnectRequest: func() Payload { return &DisconnectRequest{} },
	TypeDrawAction:        func() Payload { return &DrawAction{} },
}

// Decode reads the type tag first and then decodes the whole frame into the
// matching variant. Unknown tags yield *Unrecognized and no error.
func Decode(data []byte) (Payload, error) {
	var head struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}

	newPayload, ok := payloadFactories[head.Type]
	if !ok {
		return &Unrecognized{Type: head.Type}, nil
	}

	payload := newPayload()
	if err := json.Unmarshal(data, payload); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrMalformedFrame, head.Type, err)
	}
	return payload, nil
}

// Encode writes p as a flat JSON object with the "type" tag as first field.
func Encode(p Payload) ([]byte, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", p.MessageType(), err)
	}
	tag, err := json.Marshal(p.MessageType())
	if err != nil {
		return nil, fmt.Errorf("encode %s tag: %w", p.MessageType(), err)
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(tag) + 10)
	buf.WriteString(`{"type":`)
	buf.Write(tag)
	if rest := bytes.TrimSpace(body[1:]); len(rest) > 1 {
		buf.WriteByte(',')
		buf.Write(rest)
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}
