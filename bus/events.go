package bus

// CloudEvent type constants emitted through the observer hook.
// Following CloudEvents reverse domain notation.
const (
	// Agent lifecycle
	EventTypeAgentRegistered   = "com.simbus.bus.agent.registered"
	EventTypeAgentDeregistered = "com.simbus.bus.agent.deregistered"

	// Dispatch
	EventTypeHandlerFailed = "com.simbus.bus.handler.failed"

	// Pacer lifecycle
	EventTypePaceStarted = "com.simbus.bus.pace.started"
	EventTypePaceStopped = "com.simbus.bus.pace.stopped"
)

// observerSource identifies the bus in emitted CloudEvents.
const observerSource = "simbus-core"
