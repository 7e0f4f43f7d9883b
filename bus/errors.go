package bus

import "errors"

var (
	// Dispatch errors
	ErrQueueEmpty = errors.New("bus: scheduled event queue is empty")

	// Registration errors
	ErrUnknownAgent  = errors.New("bus: agent id was never registered")
	ErrAgentExists   = errors.New("bus: agent id already registered")
	ErrNotRegistered = errors.New("bus: runtime handle used after deregistration")
	ErrNilAgent      = errors.New("bus: agent cannot be nil")

	// Publish errors
	ErrNilPayload  = errors.New("bus: event payload cannot be nil")
	ErrBadSchedule = errors.New("bus: scheduled time is in the past")

	// External producer errors
	ErrInjectOverflow = errors.New("bus: inject queue is full")
)
