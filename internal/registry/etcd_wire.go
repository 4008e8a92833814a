package registry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/auto-route/docker-gateway-sync/internal/domain"
)

type routeValue struct {
	Target             string          `json:"target"`
	Protocol           domain.Protocol `json:"protocol"`
	OwnerContainerId   string          `json:"owner_container_id"`
	OwnerContainerName string          `json:"owner_container_name"`
	Order              int             `json:"order"`
	Created            time.Time       `json:"created"`
}

func marshalRouteValue(rec domain.RouteRecord) (string, error) {
	wire := routeValue{
		Target:             rec.Target,
		Protocol:           rec.Protocol,
		OwnerContainerId:   rec.ContainerId,
		OwnerContainerName: rec.ContainerName,
		Order:              rec.Order,
		Created:            rec.Created,
	}
	b, err := json.Marshal(wire)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalRouteValue(key, raw, prefix string) (domain.RouteRecord, error) {
	domainName := domainFromKey(prefix, key)

	var wire routeValue
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return domain.RouteRecord{}, fmt.Errorf("decode etcd value for %s: %w", key, err)
	}

	rec, err := domain.NewRouteRecord(domainName, wire.Target, wire.Protocol)
	if err != nil {
		return domain.RouteRecord{}, err
	}
	rec.ContainerId = wire.OwnerContainerId
	rec.ContainerName = wire.OwnerContainerName
	rec.Order = wire.Order
	rec.Created = wire.Created
	return rec, nil
}
