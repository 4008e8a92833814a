package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/auto-route/docker-gateway-sync/internal/app"
	"github.com/auto-route/docker-gateway-sync/internal/config"
	"github.com/auto-route/docker-gateway-sync/internal/logger"
)

type contextKey string

const configKey = contextKey("config")

var rootCmd = &cobra.Command{
	Use:   "docker-gateway-sync",
	Short: "Publish container routing declarations into etcd",
	Long:  "A host-level daemon that extracts domain-routing declarations from running containers and publishes them, with lease expiry, into etcd for reverse proxies to consume.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(); err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		cmd.SetContext(ctx)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration.
		cfg := cmd.Context().Value(configKey).(*config.Config)

		// Set up logger.
		logInstance := logger.SetupLogger(&cfg.Logging)

		// Create the application.
		application, err := app.New(cfg, logInstance)
		if err != nil {
			return fmt.Errorf("failed to create app: %w", err)
		}
		defer func() {
			if err := application.Close(); err != nil {
				logInstance.Warn().Err(err).Msg("Cleanup error")
			}
		}()

		// Create a context with cancellation for graceful shutdown.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Listen for OS signals.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			logInstance.Info().Msgf("Received signal: %v", sig)
			cancel()
		}()

		// Run the application. When context is canceled, Run returns.
		if err := application.Run(ctx); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("log-level", "INFO", "set log level (e.g. INFO, DEBUG, WARN)")
	pf.Bool("no-timestamp", false, "omit timestamps from log output")
	pf.Int("refresh", 30, "seconds between reconciliation cycles")
	pf.Float64("lease-multiplier", 3.0, "registry lease TTL as a multiple of the refresh interval (must be > 1)")
	pf.StringSlice("etcd-endpoints", []string{"http://localhost:2379"}, "etcd endpoints")
	pf.String("etcd-prefix", "/gateway/routes", "etcd key prefix for published routes")
	pf.String("docker-host", "", "docker daemon address (empty uses environment defaults)")
	pf.String("label-prefix", "gateway", "container label prefix for routing declarations")
	pf.String("host-ip", "127.0.0.1", "host IP substituted for wildcard port bindings")
	pf.Bool("systemd", false, "enable systemd service-manager notifications (READY, WATCHDOG)")
	pf.Bool("enumerate", false, "seed published state from the registry at startup")
	pf.Bool("dry-run", false, "compute and log the diff without touching the registry")
	pf.Bool("once", false, "run a single reconciliation cycle and exit")

	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.no_timestamp", pf.Lookup("no-timestamp"))
	viper.BindPFlag("app.refresh_interval", pf.Lookup("refresh"))
	viper.BindPFlag("app.lease_multiplier", pf.Lookup("lease-multiplier"))
	viper.BindPFlag("etcd.endpoints", pf.Lookup("etcd-endpoints"))
	viper.BindPFlag("etcd.path_prefix", pf.Lookup("etcd-prefix"))
	viper.BindPFlag("docker.host", pf.Lookup("docker-host"))
	viper.BindPFlag("app.label_prefix", pf.Lookup("label-prefix"))
	viper.BindPFlag("app.host_ip", pf.Lookup("host-ip"))
	viper.BindPFlag("app.systemd", pf.Lookup("systemd"))
	viper.BindPFlag("app.enumerate", pf.Lookup("enumerate"))
	viper.BindPFlag("app.dry_run", pf.Lookup("dry-run"))
	viper.BindPFlag("app.once", pf.Lookup("once"))

	// Enable automatic environment variable binding.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Execution error: %v\n", err)
		os.Exit(1)
	}
}
