package lift

import (
	"fmt"

	"github.com/rs/zerolog"
)

/*
	Elevator Algorithm
	Each car keeps one set of pending floors. Hall calls and cabin calls land in the
	same set; a floor is served once however many calls asked for it.

	On step:
		If nothing is pending, the car is IDLE.
		Otherwise take the nearest pending floor at or ahead in the direction of travel.
		If there is none ahead, reverse and take the nearest floor behind.
		An IDLE car (first step after a call) takes the nearest floor; a tie goes to the lower floor.
		Move there in one step, clear it, and report an Arrival.
		When the set empties, the car is IDLE again.

	Floors are visited in physical travel order, so a car at 1 going UP with {3, 7}
	that is given 5 stops at 3, 5, 7.
*/

// Elevator is owned by System; all methods assume the System lock is held.
type Elevator struct {
	id      int
	floor   Floor     // The floor we are on. Steps jump directly between pending floors.
	state   State     // MOVING iff pending is non-empty.
	dir     Direction // IDLE iff state != MOVING.
	pending *FloorSet // Floors we have committed to stop at.
	log     zerolog.Logger
}

func newElevator(id int, start, min, max Floor, log zerolog.Logger) *Elevator {
	return &Elevator{
		id:      id,
		floor:   start,
		state:   StateIdle,
		dir:     IDLE,
		pending: newFloorSet(min, max),
		log:     log.With().Int("elevator", id).Logger(),
	}
}

// enqueue adds req.Floor to the pending floors. It reports whether the floor was new.
func (e *Elevator) enqueue(req Request) (bool, error) {
	if e.state == StateMaintenance {
		return false, fmt.Errorf("elevator %d: %w", e.id, ErrElevatorUnavailable)
	}
	if e.pending.set(req.Floor) { // set() returns previous value.
		e.log.Debug().Stringer("request", req).Msg("floor already pending")
		return false, nil
	}
	if e.state == StateIdle {
		// Nothing else is pending, so req.Floor is the nearest target.
		e.state = StateMoving
		e.dir = e.floor.DirectionTo(req.Floor)
		if e.dir == IDLE {
			// Called to the floor we are on. Head the way the caller wants to go.
			e.dir = req.Direction
			if e.dir == IDLE {
				e.dir = UP
			}
		}
	}
	e.log.Debug().Stringer("request", req).Stringer("dir", e.dir).Int("pending", e.pending.len()).Msg("enqueued")
	return true, nil
}

// step serves the next pending floor. ok is false if the car did not move.
// The caller fills in Arrival.Tick and Arrival.At. step does not log, so cars can step in parallel.
func (e *Elevator) step() (arrival Arrival, ok bool) {
	if e.state == StateMaintenance {
		return Arrival{}, false
	}
	dest, ok := nextStop(e.pending.floors(), e.floor, e.dir)
	if !ok {
		e.state = StateIdle
		e.dir = IDLE
		return Arrival{}, false
	}

	e.pending.clear(dest)
	moved := e.floor.DirectionTo(dest)
	e.floor = dest
	if moved != IDLE {
		e.dir = moved
	}
	if e.pending.empty() {
		e.state = StateIdle
		e.dir = IDLE
	}
	return Arrival{ElevatorID: e.id, Floor: dest, Direction: moved}, true
}

// cancel removes floor from the pending floors. It reports whether it was pending.
func (e *Elevator) cancel(floor Floor) bool {
	if !e.pending.clear(floor) {
		return false
	}
	if e.pending.empty() {
		e.state = StateIdle
		e.dir = IDLE
	}
	return true
}

// enterMaintenance takes the car out of service and returns the floors it still owed.
func (e *Elevator) enterMaintenance() []Floor {
	owed := e.pending.drain()
	e.state = StateMaintenance
	e.dir = IDLE
	return owed
}

func (e *Elevator) leaveMaintenance() {
	if e.state == StateMaintenance {
		e.state = StateIdle
	}
}

func (e *Elevator) inService() bool { return e.state != StateMaintenance }

func (e *Elevator) snapshot() Snapshot {
	return Snapshot{ID: e.id, Floor: e.floor, State: e.state, Direction: e.dir, Pending: e.pending.floors()}
}

// checkInvariants panics if the car is in a state no sequence of operations should reach.
func (e *Elevator) checkInvariants() {
	moving := e.state == StateMoving
	if moving == e.pending.empty() {
		panic(fmt.Sprintf("Elevator-%d: state %s with %d pending floors", e.id, e.state, e.pending.len()))
	}
	if moving == (e.dir == IDLE) {
		panic(fmt.Sprintf("Elevator-%d: state %s with direction %s", e.id, e.state, e.dir))
	}
	if !e.pending.contains(e.floor) {
		panic(fmt.Sprintf("Elevator-%d: floor %s outside building", e.id, e.floor))
	}
}
