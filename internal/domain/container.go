package domain

import "time"

// HostAddress is the host-facing endpoint a container port is published on.
type HostAddress struct {
	IP   string
	Port int
}

// Container is one observation of a running container. Observations are
// produced fresh each reconciliation cycle and never retained past it.
type Container struct {
	Id      string
	Name    string
	Created time.Time // when the container was created
	Labels  map[string]string
	// Ports maps container-internal ports to their published host addresses.
	Ports map[int]HostAddress
}
