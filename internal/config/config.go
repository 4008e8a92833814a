package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds application-specific configuration.
type AppConfig struct {
	LabelPrefix     string  `mapstructure:"label_prefix"`
	HostIP          string  `mapstructure:"host_ip"`
	RefreshInterval int     `mapstructure:"refresh_interval"` // seconds
	LeaseMultiplier float64 `mapstructure:"lease_multiplier"`
	Enumerate       bool    `mapstructure:"enumerate"`
	DryRun          bool    `mapstructure:"dry_run"`
	Once            bool    `mapstructure:"once"`
	Systemd         bool    `mapstructure:"systemd"`
}

// LoggingConfig holds the logging-related configuration.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	NoTimestamp bool   `mapstructure:"no_timestamp"`
}

// EtcdConfig holds etcd-related configuration.
type EtcdConfig struct {
	Endpoints   []string `mapstructure:"endpoints"`
	PathPrefix  string   `mapstructure:"path_prefix"`
	DialTimeout float64  `mapstructure:"dial_timeout"` // seconds
}

// DockerConfig holds container-runtime configuration.
type DockerConfig struct {
	Host string `mapstructure:"host"` // empty means use environment defaults
}

// Config is the top-level configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Logging LoggingConfig `mapstructure:"log"`
	Etcd    EtcdConfig    `mapstructure:"etcd"`
	Docker  DockerConfig  `mapstructure:"docker"`
}

// Interval is the refresh-cycle period.
func (c *AppConfig) Interval() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// LeaseTTL is the registry lease duration: interval times the configured
// multiplier. Validate guarantees it is strictly greater than the interval,
// so one missed cycle cannot depopulate the registry.
func (c *AppConfig) LeaseTTL() time.Duration {
	return time.Duration(float64(c.Interval()) * c.LeaseMultiplier)
}

func (c *Config) Validate() error {
	if c.App.RefreshInterval <= 0 {
		return fmt.Errorf("app.refresh_interval must be positive, got %d", c.App.RefreshInterval)
	}
	if c.App.LeaseMultiplier <= 1 {
		return fmt.Errorf("app.lease_multiplier must be strictly greater than 1, got %g", c.App.LeaseMultiplier)
	}
	if c.App.LabelPrefix == "" {
		return fmt.Errorf("app.label_prefix must not be empty")
	}
	if len(c.Etcd.Endpoints) == 0 {
		return fmt.Errorf("etcd.endpoints must not be empty")
	}
	return nil
}

// InitConfig performs the initial configuration: setting defaults, specifying the config file, and reading it.
func InitConfig() error {
	// Set defaults for each sub-configuration.
	viper.SetDefault("app.label_prefix", "gateway")
	viper.SetDefault("app.host_ip", "127.0.0.1")
	viper.SetDefault("app.refresh_interval", 30)
	viper.SetDefault("app.lease_multiplier", 3.0)
	viper.SetDefault("app.enumerate", false)
	viper.SetDefault("app.dry_run", false)
	viper.SetDefault("app.once", false)
	viper.SetDefault("app.systemd", false)
	viper.SetDefault("log.level", "INFO")
	viper.SetDefault("log.no_timestamp", false)
	viper.SetDefault("etcd.endpoints", []string{"http://localhost:2379"})
	viper.SetDefault("etcd.path_prefix", "/gateway/routes")
	viper.SetDefault("etcd.dial_timeout", 2.0)
	viper.SetDefault("docker.host", "")

	// Specify the config file details.
	viper.SetConfigName("config") // Looks for config.yaml
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".") // current directory

	// Read the config file if available.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// If the file is not found, just continue with defaults and env vars.
	}

	// Enable automatic environment variable binding.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return nil
}

// Load unmarshals the configuration into the Config struct.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
