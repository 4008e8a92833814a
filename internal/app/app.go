package app

import (
	"context"
	"fmt"
	"time"

	dockerCli "github.com/docker/docker/client"
	"github.com/rs/zerolog"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/auto-route/docker-gateway-sync/internal/config"
	"github.com/auto-route/docker-gateway-sync/internal/core"
	"github.com/auto-route/docker-gateway-sync/internal/docker"
	"github.com/auto-route/docker-gateway-sync/internal/notify"
	"github.com/auto-route/docker-gateway-sync/internal/registry"
	"github.com/auto-route/docker-gateway-sync/internal/state"
)

type App struct {
	cfg          *config.Config
	dockerClient *dockerCli.Client
	etcdClient   *clientv3.Client
	reconciler   *core.Reconciler
	scheduler    *core.Scheduler
	logger       zerolog.Logger
}

// New creates a new App by wiring up all dependencies. Failure here is the
// only fatal error category: without both collaborators reachable at start,
// the process exits non-zero.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	// Docker CLI
	dockerOpts := []dockerCli.Opt{dockerCli.FromEnv, dockerCli.WithAPIVersionNegotiation()}
	if cfg.Docker.Host != "" {
		dockerOpts = append(dockerOpts, dockerCli.WithHost(cfg.Docker.Host))
	}
	dockerClient, err := dockerCli.NewClientWithOpts(dockerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	// etcd CLI
	etcdClient, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Etcd.Endpoints,
		DialTimeout: time.Duration(cfg.Etcd.DialTimeout * float64(time.Second)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	// Reconciliation engine
	inspector := docker.NewInspector(dockerClient, cfg.App.HostIP, logger)
	reg := registry.NewEtcdRegistry(etcdClient, &cfg.Etcd, logger)
	view := state.NewView()
	reconciler := core.NewReconciler(logger, &cfg.App, inspector, reg, view)

	// Service-manager notifications
	var notifier notify.Notifier = notify.Nop{}
	var heartbeat time.Duration
	if cfg.App.Systemd {
		sd, hb, err := notify.NewSystemd(logger)
		if err != nil {
			return nil, fmt.Errorf("systemd notification setup: %w", err)
		}
		notifier, heartbeat = sd, hb
	}
	scheduler := core.NewScheduler(logger, &cfg.App, reconciler, notifier, heartbeat)

	return &App{
		cfg:          cfg,
		dockerClient: dockerClient,
		etcdClient:   etcdClient,
		reconciler:   reconciler,
		scheduler:    scheduler,
		logger:       logger,
	}, nil
}

// Run seeds the published-state view when enumerate mode is on, then hands
// control to the scheduler until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info().Msg("Application starting")
	if a.cfg.App.Enumerate {
		if err := a.reconciler.SeedFromRegistry(ctx); err != nil {
			return fmt.Errorf("seed published state from registry: %w", err)
		}
	}
	return a.scheduler.Run(ctx)
}

func (a *App) Close() error {
	var firstErr error
	if a.dockerClient != nil {
		if err := a.dockerClient.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close docker client: %w", err)
		}
	}
	if a.etcdClient != nil {
		if err := a.etcdClient.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close etcd client: %w", err)
		}
	}
	return firstErr
}
