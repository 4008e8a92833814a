// Package spec parses domain-routing declarations out of container labels.
//
// A container declares routes with indexed labels:
//
//	<prefix>.domain.0 = app.example.org:8080
//	<prefix>.domain.1 = admin.example.org:9090@https
//
// The value grammar is <domain>[:<container-port>][@<protocol>]. The port
// refers to a container-internal port and must be published to a host
// address in the observation's port map; the default port is 80 and the
// default protocol is http.
//
// Parsing is pure: no I/O, deterministic output, declarations ordered by
// their numeric index.
package spec

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/auto-route/docker-gateway-sync/internal/domain"
)

const defaultPort = 80

// declaration is one label that matched the naming convention.
type declaration struct {
	index int
	label string
	value string
}

// Parse extracts the ordered routing records a container declares. Malformed
// declarations are returned as InvalidSpecError values alongside the records
// that did parse; a container contributing zero valid records is not an
// error.
func Parse(c domain.Container, prefix string) ([]domain.RouteRecord, []*InvalidSpecError) {
	labelPrefix := prefix + ".domain."

	var decls []declaration
	var invalid []*InvalidSpecError
	for label, value := range c.Labels {
		if !strings.HasPrefix(label, labelPrefix) {
			continue
		}
		suffix := label[len(labelPrefix):]
		index, err := strconv.Atoi(suffix)
		if err != nil || index < 0 {
			invalid = append(invalid, newInvalidSpec(c.Name, label, value, "declaration index must be a non-negative integer"))
			continue
		}
		decls = append(decls, declaration{index: index, label: label, value: value})
	}

	// Declaration order is the numeric index, not map iteration order.
	sort.Slice(decls, func(i, j int) bool { return decls[i].index < decls[j].index })

	records := make([]domain.RouteRecord, 0, len(decls))
	seen := make(map[string]struct{}, len(decls))
	for _, d := range decls {
		rec, err := parseValue(c, d.value)
		if err != nil {
			invalid = append(invalid, newInvalidSpec(c.Name, d.label, d.value, err.Error()))
			continue
		}
		if _, dup := seen[rec.Domain]; dup {
			invalid = append(invalid, newInvalidSpec(c.Name, d.label, d.value, fmt.Sprintf("domain %s already declared by a lower index", rec.Domain)))
			continue
		}
		seen[rec.Domain] = struct{}{}

		rec.ContainerId = c.Id
		rec.ContainerName = c.Name
		rec.Created = c.Created
		rec.Order = d.index
		records = append(records, rec)
	}
	return records, invalid
}

// parseValue interprets <domain>[:<container-port>][@<protocol>].
func parseValue(c domain.Container, value string) (domain.RouteRecord, error) {
	spec := strings.TrimSpace(value)
	if spec == "" {
		return domain.RouteRecord{}, fmt.Errorf("empty declaration")
	}

	protocol := domain.ProtocolHTTP
	if head, qualifier, found := strings.Cut(spec, "@"); found {
		p, err := domain.ParseProtocol(qualifier)
		if err != nil {
			return domain.RouteRecord{}, err
		}
		protocol = p
		spec = head
	}

	name := spec
	port := defaultPort
	if head, portStr, found := strings.Cut(spec, ":"); found {
		p, err := strconv.Atoi(portStr)
		if err != nil || p < 1 || p > 65535 {
			return domain.RouteRecord{}, fmt.Errorf("invalid container port %q", portStr)
		}
		name = head
		port = p
	}

	if !domain.IsValidHostname(name) {
		return domain.RouteRecord{}, fmt.Errorf("invalid domain name %q", name)
	}

	addr, ok := c.Ports[port]
	if !ok {
		return domain.RouteRecord{}, fmt.Errorf("container port %d is not published to a host address", port)
	}

	target := net.JoinHostPort(addr.IP, strconv.Itoa(addr.Port))
	return domain.NewRouteRecord(name, target, protocol)
}
