package lift

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes the building and the dispatch policy. It is read from YAML:
//
//	min_floor: 0
//	max_floor: 19
//	elevators: 3
//	stop_cost: 2
//	tick: 1s
type Config struct {
	MinFloor   Floor `yaml:"min_floor"`
	MaxFloor   Floor `yaml:"max_floor"`
	StartFloor Floor `yaml:"start_floor"`
	Elevators  int   `yaml:"elevators"`

	// Cost model, see Dispatcher.
	StopCost         int `yaml:"stop_cost"`
	DirectionPenalty int `yaml:"direction_penalty"`

	// Steps a request may sit unassigned before it fails with ErrAssignmentTimeout.
	AssignTimeoutTicks int `yaml:"assign_timeout_ticks"`
	// Cars stepped concurrently by Step. Zero or less means one goroutine per car.
	StepWorkers int `yaml:"step_workers"`
	// Finished requests remembered for Wait.
	ResultHistory int `yaml:"result_history"`

	Tick     time.Duration `yaml:"tick"`
	LogLevel string        `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		MinFloor:           0,
		MaxFloor:           19,
		StartFloor:         0,
		Elevators:          3,
		StopCost:           2,
		DirectionPenalty:   2,
		AssignTimeoutTicks: 10,
		StepWorkers:        0,
		ResultHistory:      1024,
		Tick:               time.Second,
		LogLevel:           "info",
	}
}

// LoadConfig reads path on top of DefaultConfig, so the file only needs the fields it changes.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	file, err := os.Open(path)
	if err != nil {
		return c, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&c); err != nil {
		return c, fmt.Errorf("decode config %s: %w", path, err)
	}
	return c, c.Validate()
}

// MaxFloors caps the building height. Each car holds one flag per floor.
const MaxFloors = 10000

func (c Config) Validate() error {
	switch {
	case c.MaxFloor <= c.MinFloor:
		return fmt.Errorf("%w: max_floor %s must be above min_floor %s", ErrInvalidConfig, c.MaxFloor, c.MinFloor)
	case int64(c.MaxFloor)-int64(c.MinFloor) >= MaxFloors:
		return fmt.Errorf("%w: %s..%s is more than %d floors", ErrInvalidConfig, c.MinFloor, c.MaxFloor, MaxFloors)
	case c.StartFloor < c.MinFloor || c.StartFloor > c.MaxFloor:
		return fmt.Errorf("%w: start_floor %s outside %s..%s", ErrInvalidConfig, c.StartFloor, c.MinFloor, c.MaxFloor)
	case c.Elevators < 1:
		return fmt.Errorf("%w: need at least one elevator, got %d", ErrInvalidConfig, c.Elevators)
	case c.StopCost < 0:
		return fmt.Errorf("%w: negative stop_cost %d", ErrInvalidConfig, c.StopCost)
	case c.DirectionPenalty < 1:
		return fmt.Errorf("%w: direction_penalty %d below 1", ErrInvalidConfig, c.DirectionPenalty)
	case c.AssignTimeoutTicks < 1:
		return fmt.Errorf("%w: assign_timeout_ticks %d below 1", ErrInvalidConfig, c.AssignTimeoutTicks)
	case c.ResultHistory < 0:
		return fmt.Errorf("%w: negative result_history %d", ErrInvalidConfig, c.ResultHistory)
	case c.Tick <= 0:
		return fmt.Errorf("%w: tick must be positive, got %v", ErrInvalidConfig, c.Tick)
	}
	return nil
}
