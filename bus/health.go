package bus

// Health is a point-in-time operational snapshot of the bus, suitable for a
// health endpoint. All fields come from atomic mirrors and are safe to
// collect while the dispatch loop runs.
type Health struct {
	QueueDepth   int     `json:"queueDepth"`
	Agents       int     `json:"agents"`
	LogicalClock int64   `json:"logicalClockUs"`
	SpeedFactor  float64 `json:"speedFactor"`
	Stats        Stats   `json:"stats"`
}

// HealthSnapshot collects the current health view.
func (b *Bus) HealthSnapshot() Health {
	return Health{
		QueueDepth:   b.QueueSize(),
		Agents:       b.AgentCount(),
		LogicalClock: b.Now().Micros(),
		SpeedFactor:  b.SpeedFactor(),
		Stats:        b.Stats(),
	}
}
