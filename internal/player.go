package internal

// Conn is a live client connection. Send must not block: implementations
// queue the frame or fail fast.
type Conn interface {
	Send(data []byte) error
	Close() error
	IsActive() bool
}

// Player is owned by its room and must only be touched under the room lock.
type Player struct {
	ClientID  string
	Username  string
	Conn      Conn
	Score     int
	IsDrawing bool
}

func NewPlayer(clientID, username string, conn Conn) *Player {
	return &Player{
		ClientID: clientID,
		Username: username,
		Conn:     conn,
	}
}

// IsConnected reports whether the player's connection can still take frames.
func (p *Player) IsConnected() bool {
	return p.Conn != nil && p.Conn.IsActive()
}

// Send writes data to the player's connection. Closed connections are
// skipped silently, only real send failures are returned.
func (p *Player) Send(data []byte) error {
	if !p.IsConnected() {
		return nil
	}
	return p.Conn.Send(data)
}

func (p *Player) ToPlayerData() PlayerData {
	return PlayerData{
		UserName:  p.Username,
		IsDrawing: p.IsDrawing,
		Score:     p.Score,
	}
}
