package lift

import (
	"slices"
	"testing"
)

func idle(id int, floor Floor) Snapshot {
	return Snapshot{ID: id, Floor: floor, State: StateIdle, Direction: IDLE}
}

func moving(id int, floor Floor, dir Direction, pending ...Floor) Snapshot {
	return Snapshot{ID: id, Floor: floor, State: StateMoving, Direction: dir, Pending: pending}
}

func inMaintenance(id int, floor Floor) Snapshot {
	return Snapshot{ID: id, Floor: floor, State: StateMaintenance, Direction: IDLE}
}

func TestAssign(t *testing.T) {
	d := NewDispatcher(2, 2)
	testCases := []struct {
		name   string
		cars   []Snapshot
		req    Request
		want   int
		wantOK bool
	}{
		{
			name:   "equal distance goes to lowest id",
			cars:   []Snapshot{idle(0, 0), idle(1, 0), idle(2, 0)},
			req:    call(5, UP),
			want:   0,
			wantOK: true,
		},
		{
			name:   "lowest id wins regardless of order",
			cars:   []Snapshot{idle(2, 3), idle(1, 7), idle(0, 9)},
			req:    call(5, DOWN),
			want:   1,
			wantOK: true,
		},
		{
			name:   "nearest idle car",
			cars:   []Snapshot{idle(0, 0), idle(1, 6)},
			req:    call(5, UP),
			want:   1,
			wantOK: true,
		},
		{
			name:   "moving car takes a call on its route",
			cars:   []Snapshot{moving(0, 1, UP, 3, 7), idle(1, 20)},
			req:    call(5, UP),
			want:   0,
			wantOK: true,
		},
		{
			name:   "moving away loses to an idle car",
			cars:   []Snapshot{moving(0, 6, UP, 9), idle(1, 9)},
			req:    call(4, UP),
			want:   1,
			wantOK: true,
		},
		{
			name:   "maintenance car is never chosen",
			cars:   []Snapshot{inMaintenance(0, 5), idle(1, 15)},
			req:    call(5, UP),
			want:   1,
			wantOK: true,
		},
		{
			name:   "all in maintenance",
			cars:   []Snapshot{inMaintenance(0, 5), inMaintenance(1, 0)},
			req:    call(5, UP),
			wantOK: false,
		},
		{
			name:   "no cars",
			req:    call(5, UP),
			wantOK: false,
		},
	}
	for _, tc := range testCases {
		got, ok := d.Assign(tc.cars, tc.req)
		if ok != tc.wantOK || (ok && got != tc.want) {
			t.Errorf("%s: Assign = %d, %t, expected %d, %t", tc.name, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestAssignIsDeterministic(t *testing.T) {
	d := NewDispatcher(2, 2)
	cars := []Snapshot{idle(3, 2), idle(1, 8), idle(0, 8), idle(2, 2)}
	for i := 0; i < 100; i++ {
		if got, _ := d.Assign(cars, call(5, UP)); got != 0 {
			t.Fatalf("run %d: Assign = %d, expected 0", i, got)
		}
	}
}

func TestCost(t *testing.T) {
	d := NewDispatcher(2, 2)
	testCases := []struct {
		name string
		car  Snapshot
		req  Request
		want int
	}{
		{"idle is distance", idle(0, 20), call(5, UP), 15},
		// 4 floors, one stop (3) first.
		{"on the way", moving(0, 1, UP, 3, 7), call(5, UP), 4 + 1*2},
		{"already pending", moving(0, 1, UP, 5, 7), call(5, DOWN), 4},
		// Up to 9 (3 floors, one stop), back down to 4 (5 floors), direct distance 2 paid twice.
		{"behind the car", moving(0, 6, UP, 9), call(4, UP), 3 + 5 + 1*2 + 2},
		{"reversing car", moving(0, 6, DOWN, 2), call(8, DOWN), 4 + 6 + 1*2 + 2},
		{"at the car's floor", moving(0, 4, DOWN, 1), call(4, DOWN), 0},
	}
	for _, tc := range testCases {
		if got := d.Cost(tc.car, tc.req); got != tc.want {
			t.Errorf("%s: Cost = %d, expected %d", tc.name, got, tc.want)
		}
	}
}

func TestCostLeavesSnapshotAlone(t *testing.T) {
	d := NewDispatcher(2, 2)
	pending := make([]Floor, 2, 8) // spare capacity: an in-place insert would show up here
	pending[0], pending[1] = 3, 9
	car := moving(0, 1, UP, pending...)

	d.Cost(car, call(5, UP))
	if !slices.Equal(car.Pending, []Floor{3, 9}) || !slices.Equal(pending[:cap(pending)][:3], []Floor{3, 9, 0}) {
		t.Errorf("Cost modified the caller's pending floors: %v", pending[:cap(pending)])
	}
	if car.Floor != 1 || car.Direction != UP {
		t.Errorf("Cost modified the caller's car: %+v", car)
	}
}
