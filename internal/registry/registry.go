package registry

import (
	"context"
	"errors"
	"time"

	"github.com/auto-route/docker-gateway-sync/internal/domain"
)

// Lease identifies the registry-side expiry attached to a published record.
// The zero Lease means "no confirmed lease".
type Lease int64

// ErrLeaseExpired reports that a renewal targeted a lease the store no
// longer knows about; the record must be re-published with a fresh lease.
var ErrLeaseExpired = errors.New("registry lease expired")

// Registry publishes route records into the shared store. All operations are
// idempotent: publishing an unchanged record and deleting an absent domain
// both succeed.
type Registry interface {
	Publish(ctx context.Context, record domain.RouteRecord, ttl time.Duration) (Lease, error)
	Renew(ctx context.Context, lease Lease) error
	Unpublish(ctx context.Context, domainName string) error
	Enumerate(ctx context.Context) ([]domain.RouteRecord, error)
	Close() error
}
