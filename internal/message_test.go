package internal

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("chat message", func(t *testing.T) {
		p, err := Decode([]byte(`{"type":"chat_message","from":"ann","roomName":"r1","message":"pizza","timestamp":7}`))
		require.NoError(t, err)
		msg, ok := p.(*ChatMessage)
		require.True(t, ok)
		assert.Equal(t, ChatMessage{From: "ann", RoomName: "r1", Message: "pizza", Timestamp: 7}, *msg)
	})

	t.Run("draw data", func(t *testing.T) {
		p, err := Decode([]byte(`{"type":"draw_data","roomName":"r1","color":255,"thickness":4.5,"fromX":1,"fromY":2,"toX":3,"toY":4,"motionEvent":2}`))
		require.NoError(t, err)
		d, ok := p.(*DrawData)
		require.True(t, ok)
		assert.Equal(t, float32(4.5), d.Thickness)
		assert.Equal(t, MotionMove, d.MotionEvent)
		assert.True(t, d.InProgress())
	})

	t.Run("handshake", func(t *testing.T) {
		p, err := Decode([]byte(`{"type":"join_room_handshake","userName":"bob","roomName":"r1","clientId":"c-1"}`))
		require.NoError(t, err)
		assert.Equal(t, &JoinRoomHandshake{UserName: "bob", RoomName: "r1", ClientID: "c-1"}, p)
	})

	t.Run("empty payload kinds", func(t *testing.T) {
		p, err := Decode([]byte(`{"type":"ping"}`))
		require.NoError(t, err)
		assert.IsType(t, &Ping{}, p)

		p, err = Decode([]byte(`{"type":"disconnect_request"}`))
		require.NoError(t, err)
		assert.IsType(t, &DisconnectRequest{}, p)
	})

	t.Run("unknown tag is not an error", func(t *testing.T) {
		p, err := Decode([]byte(`{"type":"teleport","x":1}`))
		require.NoError(t, err)
		assert.Equal(t, MessageType("teleport"), p.MessageType())
		assert.IsType(t, &Unrecognized{}, p)
	})

	t.Run("malformed frames", func(t *testing.T) {
		_, err := Decode([]byte(`not json`))
		assert.ErrorIs(t, err, ErrMalformedFrame)

		_, err = Decode([]byte(`{"type":"chat_message","message":42}`))
		assert.ErrorIs(t, err, ErrMalformedFrame)
	})
}

func TestEncode(t *testing.T) {
	t.Run("type tag comes first", func(t *testing.T) {
		data, err := Encode(GameError{ErrorType: ErrorRoomNotFound})
		require.NoError(t, err)
		assert.Equal(t, `{"type":"game_error","errorType":"ROOM_NOT_FOUND"}`, string(data))
	})

	t.Run("empty payload", func(t *testing.T) {
		data, err := Encode(Ping{})
		require.NoError(t, err)
		assert.Equal(t, `{"type":"ping"}`, string(data))
	})

	t.Run("phase change ticks omit the phase", func(t *testing.T) {
		data, err := Encode(PhaseChange{Timestamp: 4000})
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"phase_change","timestamp":4000}`, string(data))

		phase := PhaseDrawing
		data, err = Encode(PhaseChange{Phase: &phase, Timestamp: 60000, DrawingPlayer: "ann"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"phase_change","phase":"drawing","timestamp":60000,"drawingPlayer":"ann"}`, string(data))
	})

	t.Run("round draw info keeps strokes verbatim", func(t *testing.T) {
		stroke := json.RawMessage(`{"type":"draw_data","toX":1}`)
		data, err := Encode(RoundDrawInfo{Data: []json.RawMessage{stroke}})
		require.NoError(t, err)
		assert.Equal(t, `{"type":"round_draw_info","data":[{"type":"draw_data","toX":1}]}`, string(data))
	})

	t.Run("decodes back to the same variant", func(t *testing.T) {
		in := PlayersList{Players: []PlayerData{{UserName: "ann", Score: 90, Rank: 1}}}
		data, err := Encode(in)
		require.NoError(t, err)
		out, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, &in, out)
	})
}

func TestDrawDataFinished(t *testing.T) {
	d := DrawData{RoomName: "r1", Color: 3, FromX: 1, FromY: 1, ToX: 5, ToY: 6, MotionEvent: MotionMove}
	end := d.Finished()
	assert.Equal(t, MotionUp, end.MotionEvent)
	assert.Equal(t, float32(5), end.FromX)
	assert.Equal(t, float32(6), end.FromY)
	assert.Equal(t, d.ToX, end.ToX)
	assert.False(t, end.InProgress())
}

func TestValidateMaxPlayers(t *testing.T) {
	assert.Error(t, ValidateMaxPlayers(1))
	assert.NoError(t, ValidateMaxPlayers(2))
	assert.NoError(t, ValidateMaxPlayers(8))
	assert.Error(t, ValidateMaxPlayers(9))
}

func TestGameTimerRemaining(t *testing.T) {
	timer := NewGameTimer(context.Background(), PhaseDrawing, 0)
	<-timer.Done()
	assert.True(t, timer.Expired())
	assert.Zero(t, timer.Remaining())

	timer = NewGameTimer(context.Background(), PhaseDrawing, time.Hour)
	timer.Cancel()
	<-timer.Done()
	assert.False(t, timer.Expired())
	assert.Greater(t, timer.Remaining(), 59*time.Minute)
}
