package lift

import (
	"fmt"
	"slices"
)

// Maintains the on/off state of the floors of a building.
// Setting a floor twice keeps a single entry.
type FloorSet struct {
	base  Floor // floor stored at arr[0]
	arr   []bool
	count int
}

func newFloorSet(min, max Floor) *FloorSet {
	if max < min {
		panic(fmt.Sprintf("Invalid floor range %s..%s", min, max))
	}
	return &FloorSet{base: min, arr: make([]bool, int(max-min)+1)}
}

func (fs *FloorSet) index(floor Floor) int {
	i := int(floor - fs.base)
	if i < 0 || i >= len(fs.arr) {
		panic(fmt.Sprintf("Floor %s outside %s..%s", floor, fs.base, fs.top()))
	}
	return i
}

func (fs *FloorSet) top() Floor { return fs.base + Floor(len(fs.arr)-1) }

func (fs *FloorSet) contains(floor Floor) bool {
	return floor >= fs.base && floor <= fs.top()
}

// set returns the previous value.
func (fs *FloorSet) set(floor Floor) bool {
	i := fs.index(floor)
	prev := fs.arr[i]
	if !prev {
		fs.arr[i] = true
		fs.count++
	}
	return prev
}

// clear returns the previous value.
func (fs *FloorSet) clear(floor Floor) bool {
	if !fs.contains(floor) {
		return false
	}
	i := fs.index(floor)
	prev := fs.arr[i]
	if prev {
		fs.arr[i] = false
		fs.count--
	}
	return prev
}

func (fs *FloorSet) has(floor Floor) bool {
	return fs.contains(floor) && fs.arr[fs.index(floor)]
}

func (fs *FloorSet) len() int    { return fs.count }
func (fs *FloorSet) empty() bool { return fs.count == 0 }

// floors lists the set floors in ascending order. The slice is never shared.
func (fs *FloorSet) floors() []Floor {
	out := make([]Floor, 0, fs.count)
	for i, on := range fs.arr {
		if on {
			out = append(out, fs.base+Floor(i))
		}
	}
	return out
}

// drain clears the set and returns what it held.
func (fs *FloorSet) drain() []Floor {
	out := fs.floors()
	for i := range fs.arr {
		fs.arr[i] = false
	}
	fs.count = 0
	return out
}

// nextStop picks the stop a car at floor, heading dir, serves next out of the
// ascending list pending. Stops at or ahead in dir come first; when there are
// none the car reverses and takes the nearest one behind. An IDLE car takes the
// nearest stop, the smaller floor on a tie.
func nextStop(pending []Floor, floor Floor, dir Direction) (Floor, bool) {
	if len(pending) == 0 {
		return floor, false
	}
	i, here := slices.BinarySearch(pending, floor)
	if here {
		return floor, true
	}
	// pending[i] is the first stop above floor, pending[i-1] the first below.
	hasAbove, hasBelow := i < len(pending), i > 0
	switch dir {
	case UP:
		if hasAbove {
			return pending[i], true
		}
		return pending[i-1], true
	case DOWN:
		if hasBelow {
			return pending[i-1], true
		}
		return pending[i], true
	case IDLE:
		// Not reached by cars, which carry a direction while stops are pending.
		if hasAbove && hasBelow {
			if pending[i].distance(floor) < pending[i-1].distance(floor) {
				return pending[i], true
			}
			return pending[i-1], true
		}
		if hasAbove {
			return pending[i], true
		}
		return pending[i-1], true
	default:
		panic(fmt.Sprintf("Invalid direction for nextStop: %d", dir))
	}
}
