package docker

import (
	"context"
	"errors"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/rs/zerolog"

	"github.com/auto-route/docker-gateway-sync/internal/domain"
)

// ErrRuntimeUnavailable marks a failed container-runtime query. The caller
// must treat it as "unknown", never as "no containers running".
var ErrRuntimeUnavailable = errors.New("container runtime unavailable")

type dockerClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
}

// Inspector lists the currently running containers. Pure query, no mutation.
type Inspector struct {
	logger zerolog.Logger
	cli    dockerClient
	hostIP string
}

func NewInspector(cli dockerClient, hostIP string, logger zerolog.Logger) *Inspector {
	return &Inspector{
		logger: logger,
		cli:    cli,
		hostIP: hostIP,
	}
}

// ListRunning returns one observation per running container. A transport
// error propagates as ErrRuntimeUnavailable; it is never flattened into an
// empty result, since that would be indistinguishable from every container
// having stopped.
func (in *Inspector) ListRunning(ctx context.Context) ([]domain.Container, error) {
	summaries, err := in.cli.ContainerList(ctx, container.ListOptions{All: false})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuntimeUnavailable, err)
	}
	observations := make([]domain.Container, 0, len(summaries))
	for _, s := range summaries {
		observations = append(observations, in.fromContainerSummary(s))
	}
	return observations, nil
}
