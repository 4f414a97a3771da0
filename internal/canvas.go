package internal

// Motion events follow the client's touch model: a stroke is a DOWN, any
// number of MOVEs, then an UP.
const (
	MotionDown = 0
	MotionUp   = 1
	MotionMove = 2
)

type DrawData struct {
	RoomName    string  `json:"roomName"`
	Color       int     `json:"color"`
	Thickness   float32 `json:"thickness"`
	FromX       float32 `json:"fromX"`
	FromY       float32 `json:"fromY"`
	ToX         float32 `json:"toX"`
	ToY         float32 `json:"toY"`
	MotionEvent int     `json:"motionEvent"`
}

type DrawActionType string

const ActionUndo DrawActionType = "UNDO"

type DrawAction struct {
	Action DrawActionType `json:"action"`
}

// InProgress reports whether the stroke this segment belongs to is still open.
func (d DrawData) InProgress() bool {
	return d.MotionEvent == MotionDown || d.MotionEvent == MotionMove
}

// Finished returns the segment that closes the stroke d belongs to.
func (d DrawData) Finished() DrawData {
	d.FromX, d.FromY = d.ToX, d.ToY
	d.MotionEvent = MotionUp
	return d
}
