package internal

import "fmt"

type CreateRoomRequest struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"maxPlayers"`
}

type RoomResponse struct {
	Name        string `json:"name"`
	MaxPlayers  int    `json:"maxPlayers"`
	PlayerCount int    `json:"playerCount"`
}

type BasicApiResponse struct {
	Successful bool   `json:"successful"`
	Message    string `json:"message,omitempty"`
}

// ValidateMaxPlayers checks a requested room capacity against the allowed bounds.
func ValidateMaxPlayers(maxPlayers int) error {
	if maxPlayers < MinRoomSize {
		return fmt.Errorf("not enough players (minimum is %d)", MinRoomSize)
	}
	if maxPlayers > MaxRoomSize {
		return fmt.Errorf("too many players (maximum is %d)", MaxRoomSize)
	}
	return nil
}
