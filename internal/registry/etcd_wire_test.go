package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auto-route/docker-gateway-sync/internal/domain"
)

func TestRouteValueRoundTrip(t *testing.T) {
	rec, err := domain.NewRouteRecord("app.example.org", "10.1.2.3:32768", domain.ProtocolHTTPS)
	require.NoError(t, err)
	rec.ContainerId = "abc123"
	rec.ContainerName = "web"
	rec.Order = 2
	rec.Created = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	raw, err := marshalRouteValue(rec)
	require.NoError(t, err)

	key := keyForDomain("/gateway/routes", rec.Domain)
	parsed, err := unmarshalRouteValue(key, raw, "/gateway/routes")
	require.NoError(t, err)
	assert.True(t, rec.Equal(parsed))
	assert.Equal(t, rec.Order, parsed.Order)
	assert.True(t, rec.Created.Equal(parsed.Created))
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := unmarshalRouteValue("/gateway/routes/org/example/app", "not json", "/gateway/routes")
	require.Error(t, err)

	// A syntactically valid value with an empty target is still not a record.
	_, err = unmarshalRouteValue("/gateway/routes/org/example/app", `{"protocol":"http"}`, "/gateway/routes")
	require.Error(t, err)
}
