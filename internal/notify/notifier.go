package notify

// Notifier is the service-manager liveness boundary. Implementations must
// never block the caller's control loop and must treat delivery failures as
// non-fatal: the supervising process manager restarts a silent daemon on its
// own.
type Notifier interface {
	// Ready signals that initial state is established.
	Ready()
	// Alive sends one watchdog heartbeat.
	Alive()
	// Stopping signals the start of graceful shutdown.
	Stopping()
}

// Nop is used when service-manager notifications are disabled.
type Nop struct{}

func (Nop) Ready()    {}
func (Nop) Alive()    {}
func (Nop) Stopping() {}
