package lift

import "errors"

var (
	ErrInvalidFloor        = errors.New("floor outside building range")
	ErrInvalidDirection    = errors.New("invalid call direction")
	ErrUnknownElevator     = errors.New("unknown elevator")
	ErrElevatorUnavailable = errors.New("elevator in maintenance")
	ErrUnknownRequest      = errors.New("unknown request")
	ErrRequestCancelled    = errors.New("request cancelled")
	// ErrAssignmentTimeout is reported by Wait for a request that found no eligible
	// elevator for Config.AssignTimeoutTicks consecutive steps.
	ErrAssignmentTimeout = errors.New("no eligible elevator")
	ErrInvalidConfig     = errors.New("invalid config")
)
