package docker

import (
	"context"
	"errors"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auto-route/docker-gateway-sync/internal/domain"
)

type fakeDockerClient struct {
	summaries []container.Summary
	err       error
}

func (f *fakeDockerClient) ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summaries, nil
}

func TestListRunningWrapsTransportErrors(t *testing.T) {
	insp := NewInspector(&fakeDockerClient{err: errors.New("connection refused")}, "10.0.0.1", zerolog.Nop())

	obs, err := insp.ListRunning(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRuntimeUnavailable)
	assert.Nil(t, obs, "a transport error must never look like an empty host")
}

func TestListRunningMapsSummaries(t *testing.T) {
	cli := &fakeDockerClient{summaries: []container.Summary{
		{
			ID:      "abc123",
			Names:   []string{"/web"},
			Created: 1714564800,
			Labels:  map[string]string{"gateway.domain.0": "svc.example.org:8080"},
			Ports: []container.Port{
				{PrivatePort: 8080, PublicPort: 32768, Type: "tcp", IP: "0.0.0.0"},
				{PrivatePort: 9090, PublicPort: 32769, Type: "tcp", IP: "192.168.1.5"},
				{PrivatePort: 5432, PublicPort: 0, Type: "tcp"},
				{PrivatePort: 53, PublicPort: 30053, Type: "udp", IP: "0.0.0.0"},
			},
		},
	}}
	insp := NewInspector(cli, "10.0.0.1", zerolog.Nop())

	obs, err := insp.ListRunning(context.Background())
	require.NoError(t, err)
	require.Len(t, obs, 1)

	c := obs[0]
	assert.Equal(t, "abc123", c.Id)
	assert.Equal(t, "web", c.Name, "leading slash is stripped from the name")
	assert.Contains(t, c.Labels, "gateway.domain.0")

	// Wildcard binds get the configured host IP; explicit binds keep theirs;
	// unpublished and non-TCP ports are absent.
	assert.Equal(t, map[int]domain.HostAddress{
		8080: {IP: "10.0.0.1", Port: 32768},
		9090: {IP: "192.168.1.5", Port: 32769},
	}, c.Ports)
}
