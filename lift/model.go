package lift

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// The floors are numbered from Config.MinFloor to Config.MaxFloor.
type Floor int

func (f Floor) String() string { return strconv.Itoa(int(f)) }

func (f Floor) DirectionTo(dest Floor) Direction {
	if f == dest {
		return IDLE
	} else if dest > f {
		return UP
	} else {
		return DOWN
	}
}

func (f Floor) distance(other Floor) int {
	if f > other {
		return int(f - other)
	}
	return int(other - f)
}

// Direction
type Direction int

const (
	UP   Direction = 1
	IDLE Direction = 0
	DOWN Direction = -1
)

func (d Direction) String() string {
	switch d {
	case UP:
		return "UP"
	case DOWN:
		return "DOWN"
	case IDLE:
		return "IDLE"
	default:
		panic(fmt.Sprintf("Unknown direction: %d", d))
	}
}

// State of an elevator car.
type State int

const (
	StateIdle State = iota
	StateMoving
	StateMaintenance
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateMoving:
		return "MOVING"
	case StateMaintenance:
		return "MAINTENANCE"
	default:
		panic(fmt.Sprintf("Unknown state: %d", s))
	}
}

// Origin tells whether a call came from a hall button or a cabin panel.
type Origin int

const (
	External Origin = iota
	Internal
)

func (o Origin) String() string {
	if o == Internal {
		return "INTERNAL"
	}
	return "EXTERNAL"
}

type RequestID = uuid.UUID

// Request is a pickup (External) or destination (Internal) call.
// It is never modified after newRequest returns it.
type Request struct {
	ID        RequestID
	Floor     Floor
	Direction Direction
	Origin    Origin
	// ElevatorID is the car whose panel was pressed. Only meaningful for Internal.
	ElevatorID int
}

func newRequest(floor Floor, dir Direction, origin Origin, elevatorID int) Request {
	return Request{ID: uuid.New(), Floor: floor, Direction: dir, Origin: origin, ElevatorID: elevatorID}
}

func (r Request) String() string {
	if r.Origin == Internal {
		return fmt.Sprintf("Dropoff(%s in %d)", r.Floor, r.ElevatorID)
	}
	return fmt.Sprintf("Pickup(%s %s)", r.Floor, r.Direction)
}

// Arrival is emitted when a car reaches one of its pending floors.
// Direction is the direction travelled to get there (IDLE if the car was already on the floor).
type Arrival struct {
	ElevatorID int
	Floor      Floor
	Direction  Direction
	Tick       uint64
	At         time.Time
}

func (a Arrival) String() string {
	return fmt.Sprintf("Arrival(%d @ %s %s, tick %d)", a.ElevatorID, a.Floor, a.Direction, a.Tick)
}

// Snapshot is a read-only copy of an elevator. It shares no memory with the car.
type Snapshot struct {
	ID        int
	Floor     Floor
	State     State
	Direction Direction
	Pending   []Floor // ascending
}
