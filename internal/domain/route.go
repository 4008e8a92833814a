package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Protocol selects the backend scheme a route points at.
type Protocol string

const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
)

func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(s) {
	case "http":
		return ProtocolHTTP, nil
	case "https":
		return ProtocolHTTPS, nil
	default:
		return "", fmt.Errorf("unsupported protocol %q", s)
	}
}

// RouteRecord states that traffic for Domain should be routed to Target.
// Domain is the natural key: the registry holds at most one record per
// domain at any time.
type RouteRecord struct {
	Domain        string
	Target        string // host:port
	Protocol      Protocol
	ContainerId   string
	ContainerName string
	Order         int       // declaration index within the owning container
	Created       time.Time // when the owning container was created
}

func NewRouteRecord(domainName, target string, protocol Protocol) (RouteRecord, error) {
	if !IsValidHostname(domainName) {
		return RouteRecord{}, fmt.Errorf("invalid domain name: %s", domainName)
	}
	if target == "" {
		return RouteRecord{}, fmt.Errorf("empty target for domain %s", domainName)
	}
	return RouteRecord{
		Domain:   domainName,
		Target:   target,
		Protocol: protocol,
	}, nil
}

// Equal reports whether two records would publish the same registry value.
// Ownership fields count: a domain taken over by another container is a
// changed record and must be re-published.
func (r RouteRecord) Equal(o RouteRecord) bool {
	return r.Domain == o.Domain &&
		r.Target == o.Target &&
		r.Protocol == o.Protocol &&
		r.ContainerId == o.ContainerId &&
		r.ContainerName == o.ContainerName
}

func (r RouteRecord) Render() string {
	return fmt.Sprintf("%s -> %s://%s (container=%s)", r.Domain, r.Protocol, r.Target, r.ContainerName)
}

var hostnameRegexp = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

func IsValidHostname(h string) bool {
	return len(h) > 0 && len(h) <= 255 && hostnameRegexp.MatchString(h)
}
