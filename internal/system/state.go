package system

// SystemState tracks where the runner is in its lifecycle.
type SystemState string

const (
	StateInitializing SystemState = "initializing"
	StateRunning      SystemState = "running"
	StateStopping     SystemState = "stopping"
	StateStopped      SystemState = "stopped"
)
