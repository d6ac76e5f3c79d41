package main

import (
	"context"
	"errors"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/delliston/liftdispatch/lift"
	"github.com/delliston/liftdispatch/logger"
	"github.com/rs/zerolog"
)

// Runs a building with a handful of passengers riding at random, and takes one
// car out of service for a while to show calls moving to the others.
func main() {
	configPath := flag.String("config", "", "YAML config file (defaults are used if empty)")
	numPassengers := flag.Int("passengers", 6, "passengers to simulate")
	flag.Parse()

	cfg := lift.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = lift.LoadConfig(*configPath); err != nil {
			logger.GetLogger().Fatal().Err(err).Msg("Failed to load config")
		}
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.GetLogger().Fatal().Err(err).Msg("Bad log level")
	}
	log := logger.GetLoggerConfigured(level)

	s, err := lift.NewSystem(cfg, lift.WithLogger(*log))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create system")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	clock := lift.NewClock(s, cfg.Tick, func(arrivals []lift.Arrival) {
		for _, a := range arrivals {
			log.Info().Stringer("arrival", a).Msg("Arrived")
		}
	})
	go func() {
		if err := clock.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Clock stopped")
		}
	}()

	if cfg.Elevators > 1 {
		go maintain(ctx, s, log, 1, 3*cfg.Tick, 8*cfg.Tick)
	}

	wgPass := sync.WaitGroup{}
	span := int(cfg.MaxFloor-cfg.MinFloor) + 1
	for id := 1; id <= *numPassengers; id++ {
		p := &Passenger{id, cfg.MinFloor + lift.Floor(rand.Intn(span)), cfg.MinFloor + lift.Floor(rand.Intn(span))}
		wgPass.Add(1)
		go func() {
			defer wgPass.Done()
			p.ride(ctx, s, log)
		}()
		time.Sleep(cfg.Tick / 2)
	}
	wgPass.Wait() // Waits until all passengers complete or the run is interrupted.
	log.Info().Msg("All passengers have been serviced")
}

// maintain takes car id out of service after delay, for duration.
func maintain(ctx context.Context, s *lift.System, log *zerolog.Logger, id int, delay, duration time.Duration) {
	for _, step := range []struct {
		wait time.Duration
		on   bool
	}{{delay, true}, {duration, false}} {
		select {
		case <-ctx.Done():
			return
		case <-time.After(step.wait):
		}
		if err := s.SetMaintenance(id, step.on); err != nil {
			log.Error().Err(err).Int("elevator", id).Msg("Maintenance toggle failed")
		}
	}
}

// Passenger is a group of people who call a car at start and ride it to dest.
type Passenger struct {
	id    int
	start lift.Floor
	dest  lift.Floor
}

func (p *Passenger) ride(ctx context.Context, s *lift.System, log *zerolog.Logger) {
	plog := log.With().Int("passenger", p.id).Logger()
	if p.start == p.dest {
		plog.Info().Stringer("floor", p.start).Msg("Skipping elevator, already there")
		return
	}

	// Request pickup and wait.
	dir := p.start.DirectionTo(p.dest)
	id, err := s.HandleRequest(p.start, dir)
	if err != nil {
		plog.Error().Err(err).Msg("Pickup rejected")
		return
	}
	plog.Info().Stringer("floor", p.start).Stringer("dir", dir).Msg("Waiting for pickup")
	a, err := s.Wait(ctx, id)
	if err != nil {
		plog.Warn().Err(err).Msg("Gave up waiting for pickup")
		return
	}

	// Board and press button. The car may have gone into maintenance since it arrived.
	// The clock keeps running, so the car may already have left p.start; the ride's
	// direction is taken from wherever the car is when the button is pressed.
	plog.Info().Int("elevator", a.ElevatorID).Msg("Boarded")
	id, err = s.HandleInternalRequest(a.ElevatorID, p.dest)
	if errors.Is(err, lift.ErrElevatorUnavailable) {
		plog.Warn().Int("elevator", a.ElevatorID).Msg("Car went out of service, taking the stairs")
		return
	}
	if err != nil {
		plog.Error().Err(err).Msg("Dropoff rejected")
		return
	}
	if _, err := s.Wait(ctx, id); err != nil {
		plog.Warn().Err(err).Msg("Did not reach destination")
		return
	}
	plog.Info().Stringer("floor", p.dest).Msg("Arrived at destination floor")
}
