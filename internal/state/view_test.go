package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auto-route/docker-gateway-sync/internal/domain"
)

func record(d, target string) domain.RouteRecord {
	rec, err := domain.NewRouteRecord(d, target, domain.ProtocolHTTP)
	if err != nil {
		panic(err)
	}
	return rec
}

func TestViewSetGetDelete(t *testing.T) {
	v := NewView()
	_, ok := v.Get("app.example.org")
	assert.False(t, ok)

	v.Set("app.example.org", Entry{Record: record("app.example.org", "10.0.0.1:80"), Lease: 7})
	e, ok := v.Get("app.example.org")
	require.True(t, ok)
	assert.EqualValues(t, 7, e.Lease)

	v.Delete("app.example.org")
	_, ok = v.Get("app.example.org")
	assert.False(t, ok)
}

func TestViewClearLease(t *testing.T) {
	v := NewView()
	v.Set("app.example.org", Entry{Record: record("app.example.org", "10.0.0.1:80"), Lease: 7})
	v.ClearLease("app.example.org")

	e, ok := v.Get("app.example.org")
	require.True(t, ok)
	assert.Zero(t, e.Lease, "record stays tracked but its lease confirmation is dropped")
	assert.Equal(t, "app.example.org", e.Record.Domain)

	// Clearing an untracked domain is a no-op.
	v.ClearLease("ghost.example.org")
	assert.Equal(t, 1, v.Len())
}

func TestViewDomainsSorted(t *testing.T) {
	v := NewView()
	for _, d := range []string{"zeta.example.org", "alpha.example.org", "mid.example.org"} {
		v.Set(d, Entry{Record: record(d, "10.0.0.1:80")})
	}
	assert.Equal(t, []string{"alpha.example.org", "mid.example.org", "zeta.example.org"}, v.Domains())
}

func TestViewSeed(t *testing.T) {
	v := NewView()
	v.Seed([]domain.RouteRecord{
		record("a.example.org", "10.0.0.1:80"),
		record("b.example.org", "10.0.0.2:80"),
	})
	assert.Equal(t, 2, v.Len())

	e, ok := v.Get("a.example.org")
	require.True(t, ok)
	assert.Zero(t, e.Lease, "seeded entries carry no lease confirmation")
}
