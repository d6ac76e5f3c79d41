package lift

import (
	"fmt"
	"math"
	"slices"

	"github.com/tiendc/go-deepcopy"
)

// Dispatcher chooses which elevator serves a hall call. It only holds its cost
// parameters and never touches the cars, so one value can be shared freely.
//
// Cost of a car for a call at floor F (lower is better):
//   - IDLE: |floor - F|.
//   - MOVING: the floors it drives along its route until it reaches F, plus
//     StopCost for each queued stop it serves first. A car that must turn around
//     to reach F also pays DirectionPenalty times the direct distance instead of once.
//   - MAINTENANCE: not eligible.
//
// Ties go to the lowest id.
type Dispatcher struct {
	StopCost         int
	DirectionPenalty int
}

func NewDispatcher(stopCost, directionPenalty int) Dispatcher {
	return Dispatcher{StopCost: stopCost, DirectionPenalty: directionPenalty}
}

// Assign returns the id of the car that should serve req, or ok == false if
// every car is in maintenance.
func (d Dispatcher) Assign(cars []Snapshot, req Request) (id int, ok bool) {
	best := math.MaxInt
	for _, car := range cars {
		if car.State == StateMaintenance {
			continue
		}
		c := d.Cost(car, req)
		if c < best || (c == best && car.ID < id) {
			best, id, ok = c, car.ID, true
		}
	}
	return id, ok
}

// Cost scores car against req. It panics for a car in maintenance.
func (d Dispatcher) Cost(car Snapshot, req Request) int {
	direct := car.Floor.distance(req.Floor)
	switch car.State {
	case StateIdle:
		return direct
	case StateMoving:
		travel, stops := d.route(car, req.Floor)
		cost := travel + stops*d.StopCost
		if need := car.Floor.DirectionTo(req.Floor); need != IDLE && need != car.Direction {
			cost += (d.DirectionPenalty - 1) * direct
		}
		return cost
	default:
		panic(fmt.Sprintf("Cost of elevator %d in state %s", car.ID, car.State))
	}
}

// route plays the car forward with target added to its stops, the same way
// Elevator.step would, until it reaches target.
func (d Dispatcher) route(car Snapshot, target Floor) (travel, stops int) {
	// The simulation edits Pending in place; work on a copy so the caller's slice is untouched.
	sim := new(Snapshot)
	if err := deepcopy.Copy(sim, &car); err != nil {
		panic(fmt.Sprintf("copy elevator %d: %v", car.ID, err))
	}
	if i, found := slices.BinarySearch(sim.Pending, target); !found {
		sim.Pending = slices.Insert(sim.Pending, i, target)
	}

	for {
		next, _ := nextStop(sim.Pending, sim.Floor, sim.Direction)
		travel += sim.Floor.distance(next)
		if next == target {
			return travel, stops
		}
		stops++
		if moved := sim.Floor.DirectionTo(next); moved != IDLE {
			sim.Direction = moved
		}
		sim.Floor = next
		i, _ := slices.BinarySearch(sim.Pending, next)
		sim.Pending = slices.Delete(sim.Pending, i, i+1)
	}
}
