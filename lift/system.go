package lift

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// The System owns the elevators and every call made to them.
// All mutations and reads of elevator state happen under mu, so the Dispatcher
// always scores a consistent view and two calls are never placed on stale occupancy.
type System struct {
	mu         sync.Mutex
	cfg        Config
	dispatcher Dispatcher
	elevators  []*Elevator           // indexed by id
	riders     []map[Floor][]*ticket // per elevator: calls waiting for that car at that floor
	unassigned []*ticket             // calls no car could take yet, oldest first
	tickets    map[RequestID]*ticket // open calls plus the last cfg.ResultHistory finished ones
	finished   []RequestID           // finished calls still in tickets, oldest first
	tick       uint64
	now        func() time.Time
	log        zerolog.Logger
}

// ticket follows one Request until it is served, cancelled or given up on.
type ticket struct {
	req      Request
	failures int // consecutive steps without an eligible car
	done     chan struct{}
	arrival  Arrival
	err      error
}

func (t *ticket) closed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

type Option func(*System)

func WithLogger(log zerolog.Logger) Option { return func(s *System) { s.log = log } }

// WithClock sets the time stamped on arrivals.
func WithClock(now func() time.Time) Option { return func(s *System) { s.now = now } }

func NewSystem(cfg Config, opts ...Option) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &System{
		cfg:        cfg,
		dispatcher: NewDispatcher(cfg.StopCost, cfg.DirectionPenalty),
		tickets:    make(map[RequestID]*ticket),
		now:        time.Now,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.elevators = make([]*Elevator, cfg.Elevators)
	s.riders = make([]map[Floor][]*ticket, cfg.Elevators)
	for i := range s.elevators {
		s.elevators[i] = newElevator(i, cfg.StartFloor, cfg.MinFloor, cfg.MaxFloor, s.log)
		s.riders[i] = make(map[Floor][]*ticket)
	}
	s.log.Info().Int("elevators", cfg.Elevators).Stringer("min", cfg.MinFloor).Stringer("max", cfg.MaxFloor).Msg("system started")
	return s, nil
}

// HandleRequest registers a hall call. If every car is in maintenance the call
// is kept and offered again on each Step until it times out.
func (s *System) HandleRequest(floor Floor, dir Direction) (RequestID, error) {
	if err := s.checkFloor(floor); err != nil {
		return RequestID{}, err
	}
	if dir != UP && dir != DOWN {
		return RequestID{}, fmt.Errorf("%w: %s at floor %s", ErrInvalidDirection, dir, floor)
	}
	if (dir == UP && floor == s.cfg.MaxFloor) || (dir == DOWN && floor == s.cfg.MinFloor) {
		return RequestID{}, fmt.Errorf("%w: no %s call at floor %s", ErrInvalidDirection, dir, floor)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.track(newRequest(floor, dir, External, -1))
	if !s.dispatch(t) {
		s.log.Warn().Stringer("request", t.req).Msg("no eligible elevator, holding call")
		s.unassigned = append(s.unassigned, t)
	}
	s.checkInvariants()
	return t.req.ID, nil
}

// HandleInternalRequest registers a cabin panel press in elevator id.
func (s *System) HandleInternalRequest(id int, floor Floor) (RequestID, error) {
	if err := s.checkFloor(floor); err != nil {
		return RequestID{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.car(id)
	if err != nil {
		return RequestID{}, err
	}
	if !e.inService() {
		return RequestID{}, fmt.Errorf("elevator %d: %w", id, ErrElevatorUnavailable)
	}
	t := s.track(newRequest(floor, e.floor.DirectionTo(floor), Internal, id))
	s.assign(t, e)
	s.checkInvariants()
	return t.req.ID, nil
}

// Step advances the simulation one tick. Held calls are offered to the cars
// first, then every car serves at most one floor. Arrivals are ordered by elevator id.
func (s *System) Step() []Arrival {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	s.retryUnassigned()

	moves := make([]Arrival, len(s.elevators))
	moved := make([]bool, len(s.elevators))
	var g errgroup.Group
	if s.cfg.StepWorkers > 0 {
		g.SetLimit(s.cfg.StepWorkers)
	}
	for i, e := range s.elevators {
		g.Go(func() error {
			moves[i], moved[i] = e.step()
			return nil
		})
	}
	_ = g.Wait() // steps never fail

	now := s.now()
	arrivals := make([]Arrival, 0, len(moves))
	for i, a := range moves {
		if !moved[i] {
			continue
		}
		a.Tick = s.tick
		a.At = now
		e := s.elevators[i]
		e.log.Debug().Stringer("floor", a.Floor).Stringer("moved", a.Direction).Stringer("state", e.state).Msg("arrived")
		for _, t := range s.riders[i][a.Floor] {
			s.resolve(t, a, nil)
		}
		delete(s.riders[i], a.Floor)
		arrivals = append(arrivals, a)
	}
	s.checkInvariants()
	return arrivals
}

// SetMaintenance takes elevator id out of service (on) or returns it (off).
// Floors the car still owed are handed to other cars, or held like any
// unassignable call; none are dropped.
func (s *System) SetMaintenance(id int, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.car(id)
	if err != nil {
		return err
	}

	if !on {
		if !e.inService() {
			e.leaveMaintenance()
			e.log.Info().Msg("back in service")
		}
		s.checkInvariants()
		return nil
	}
	if !e.inService() {
		return nil
	}

	owed := e.enterMaintenance()
	e.log.Info().Int("owed", len(owed)).Msg("entering maintenance")
	for _, floor := range owed {
		s.redistribute(id, floor)
	}
	s.checkInvariants()
	return nil
}

// CancelRequest drops floor from elevator id's stops. Calls waiting for it
// finish with ErrRequestCancelled. Cancelling a floor that is not pending does nothing.
func (s *System) CancelRequest(floor Floor, id int) error {
	if err := s.checkFloor(floor); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.car(id)
	if err != nil {
		return err
	}
	if e.cancel(floor) {
		e.log.Debug().Stringer("floor", floor).Msg("stop cancelled")
	}
	for _, t := range s.riders[id][floor] {
		s.resolve(t, Arrival{}, fmt.Errorf("floor %s on elevator %d: %w", floor, id, ErrRequestCancelled))
	}
	delete(s.riders[id], floor)
	s.checkInvariants()
	return nil
}

// State returns a copy of elevator id for display.
func (s *System) State(id int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.car(id)
	if err != nil {
		return Snapshot{}, err
	}
	return e.snapshot(), nil
}

// States returns a copy of every elevator, by id.
func (s *System) States() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots()
}

// Wait blocks until the call id is served and returns its Arrival. It fails with
// ErrRequestCancelled, ErrAssignmentTimeout or the context's error.
// Finished calls can be waited on until Config.ResultHistory newer ones have finished.
func (s *System) Wait(ctx context.Context, id RequestID) (Arrival, error) {
	s.mu.Lock()
	t, ok := s.tickets[id]
	s.mu.Unlock()
	if !ok {
		return Arrival{}, fmt.Errorf("%w: %s", ErrUnknownRequest, id)
	}

	select {
	case <-t.done:
		return t.arrival, t.err
	case <-ctx.Done():
		return Arrival{}, ctx.Err()
	}
}

// Tick is the number of Steps taken so far.
func (s *System) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

func (s *System) checkFloor(floor Floor) error {
	if floor < s.cfg.MinFloor || floor > s.cfg.MaxFloor {
		return fmt.Errorf("%w: %s not in %s..%s", ErrInvalidFloor, floor, s.cfg.MinFloor, s.cfg.MaxFloor)
	}
	return nil
}

func (s *System) car(id int) (*Elevator, error) {
	if id < 0 || id >= len(s.elevators) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownElevator, id)
	}
	return s.elevators[id], nil
}

func (s *System) snapshots() []Snapshot {
	out := make([]Snapshot, len(s.elevators))
	for i, e := range s.elevators {
		out[i] = e.snapshot()
	}
	return out
}

func (s *System) track(req Request) *ticket {
	t := &ticket{req: req, done: make(chan struct{})}
	s.tickets[req.ID] = t
	return t
}

// dispatch places t on the cheapest car. It reports false if no car is eligible.
func (s *System) dispatch(t *ticket) bool {
	id, ok := s.dispatcher.Assign(s.snapshots(), t.req)
	if !ok {
		return false
	}
	s.assign(t, s.elevators[id])
	return true
}

func (s *System) assign(t *ticket, e *Elevator) {
	if _, err := e.enqueue(t.req); err != nil {
		// Callers only pass cars in service.
		panic(fmt.Sprintf("assign %s: %v", t.req, err))
	}
	t.failures = 0
	s.riders[e.id][t.req.Floor] = append(s.riders[e.id][t.req.Floor], t)
	s.log.Debug().Stringer("request", t.req).Int("elevator", e.id).Msg("assigned")
}

func (s *System) retryUnassigned() {
	held := s.unassigned
	s.unassigned = nil
	for _, t := range held {
		if t.closed() || s.dispatch(t) {
			continue
		}
		t.failures++
		if t.failures >= s.cfg.AssignTimeoutTicks {
			s.log.Warn().Stringer("request", t.req).Int("ticks", t.failures).Msg("assignment timed out")
			s.resolve(t, Arrival{}, fmt.Errorf("%s after %d ticks: %w", t.req, t.failures, ErrAssignmentTimeout))
			continue
		}
		s.unassigned = append(s.unassigned, t)
	}
}

// redistribute moves the calls for floor off elevator from, which is already in maintenance.
func (s *System) redistribute(from int, floor Floor) {
	waiting := s.riders[from][floor]
	delete(s.riders[from], floor)
	if len(waiting) == 0 {
		// assign records a rider for every floor it enqueues.
		panic(fmt.Sprintf("Elevator-%d: pending floor %s has no calls", from, floor))
	}

	for _, t := range waiting {
		if !s.dispatch(t) {
			s.log.Warn().Stringer("request", t.req).Int("from", from).Msg("no eligible elevator, holding call")
			s.unassigned = append(s.unassigned, t)
		}
	}
}

func (s *System) resolve(t *ticket, a Arrival, err error) {
	if t.closed() {
		return
	}
	t.arrival, t.err = a, err
	close(t.done)

	s.finished = append(s.finished, t.req.ID)
	for len(s.finished) > s.cfg.ResultHistory {
		delete(s.tickets, s.finished[0])
		s.finished = s.finished[1:]
	}
}

// checkInvariants panics if any car, or the calls recorded against it, is inconsistent.
func (s *System) checkInvariants() {
	for i, e := range s.elevators {
		e.checkInvariants()
		for floor, waiting := range s.riders[i] {
			if !e.pending.has(floor) {
				panic(fmt.Sprintf("Elevator-%d: %d calls waiting at %s, which is not pending", i, len(waiting), floor))
			}
		}
	}
}
