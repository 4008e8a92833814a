package docker

import (
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"

	"github.com/auto-route/docker-gateway-sync/internal/domain"
)

func (in *Inspector) fromContainerSummary(c container.Summary) domain.Container {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}
	return domain.Container{
		Id:      c.ID,
		Name:    name,
		Created: time.Unix(c.Created, 0),
		Labels:  c.Labels,
		Ports:   in.portMap(c.Ports),
	}
}

// portMap keeps published TCP ports only. Docker reports wildcard bind
// addresses (0.0.0.0, ::); those are replaced with the configured host IP so
// published targets are reachable from off-host.
func (in *Inspector) portMap(ports []container.Port) map[int]domain.HostAddress {
	m := make(map[int]domain.HostAddress, len(ports))
	for _, p := range ports {
		if p.Type != "tcp" || p.PublicPort == 0 {
			continue
		}
		ip := p.IP
		if ip == "" || ip == "0.0.0.0" || ip == "::" {
			ip = in.hostIP
		}
		m[int(p.PrivatePort)] = domain.HostAddress{IP: ip, Port: int(p.PublicPort)}
	}
	return m
}
