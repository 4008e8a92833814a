package registry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.etcd.io/etcd/api/v3/v3rpc/rpctypes"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/auto-route/docker-gateway-sync/internal/config"
	"github.com/auto-route/docker-gateway-sync/internal/domain"
	"github.com/rs/zerolog"
)

type etcdClient interface {
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
	Put(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error)
	Delete(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error)
	Grant(ctx context.Context, ttl int64) (*clientv3.LeaseGrantResponse, error)
	KeepAliveOnce(ctx context.Context, id clientv3.LeaseID) (*clientv3.LeaseKeepAliveResponse, error)
	Close() error
}

// EtcdRegistry stores route records in etcd, one key per domain, each
// attached to a lease so records expire on their own when the daemon stops
// renewing them.
type EtcdRegistry struct {
	client etcdClient
	cfg    *config.EtcdConfig
	logger zerolog.Logger
}

func NewEtcdRegistry(client etcdClient, cfg *config.EtcdConfig, logger zerolog.Logger) *EtcdRegistry {
	return &EtcdRegistry{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Publish upserts the record under a fresh lease and returns it. Re-putting
// an existing key detaches it from its previous lease, which then simply
// runs out; no revocation is needed.
func (er *EtcdRegistry) Publish(ctx context.Context, record domain.RouteRecord, ttl time.Duration) (Lease, error) {
	value, err := marshalRouteValue(record)
	if err != nil {
		return 0, err
	}
	// etcd grants whole seconds; round up so a fractional TTL keeps its
	// margin over the refresh interval instead of truncating down to it.
	seconds := int64(math.Ceil(ttl.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	leaseResp, err := er.client.Grant(ctx, seconds)
	if err != nil {
		return 0, fmt.Errorf("grant lease for %s: %w", record.Domain, err)
	}
	key := keyForDomain(er.cfg.PathPrefix, record.Domain)
	if _, err := er.client.Put(ctx, key, value, clientv3.WithLease(leaseResp.ID)); err != nil {
		return 0, fmt.Errorf("put %s: %w", key, err)
	}
	return Lease(leaseResp.ID), nil
}

// Renew extends the lease of an already-published record without rewriting
// its value. A lease the store has already expired surfaces as
// ErrLeaseExpired so the caller can fall back to Publish.
func (er *EtcdRegistry) Renew(ctx context.Context, lease Lease) error {
	_, err := er.client.KeepAliveOnce(ctx, clientv3.LeaseID(lease))
	if err != nil {
		if errors.Is(err, rpctypes.ErrLeaseNotFound) || errors.Is(err, rpctypes.ErrGRPCLeaseNotFound) {
			return ErrLeaseExpired
		}
		return fmt.Errorf("keepalive lease %d: %w", lease, err)
	}
	return nil
}

// Unpublish deletes the record for a domain. Deleting an absent key is
// success, not an error.
func (er *EtcdRegistry) Unpublish(ctx context.Context, domainName string) error {
	key := keyForDomain(er.cfg.PathPrefix, domainName)
	if _, err := er.client.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Enumerate lists every record currently published under the configured
// prefix. Used at startup to rebuild the local view after a restart.
func (er *EtcdRegistry) Enumerate(ctx context.Context) ([]domain.RouteRecord, error) {
	resp, err := er.client.Get(ctx, er.cfg.PathPrefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", er.cfg.PathPrefix, err)
	}
	records := make([]domain.RouteRecord, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		rec, err := unmarshalRouteValue(string(kv.Key), string(kv.Value), er.cfg.PathPrefix)
		if err != nil {
			er.logger.Warn().Err(err).Str("key", string(kv.Key)).Msg("Skipping unparsable registry entry")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (er *EtcdRegistry) Close() error {
	return er.client.Close()
}
