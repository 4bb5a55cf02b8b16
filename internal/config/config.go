// Package config provides configuration management for Shuttle.
//
// This package handles loading configuration from multiple sources:
//   - YAML configuration files
//   - Environment variables (with SHUTTLE_ prefix)
//   - .env files
//   - Default values
//
// # Configuration Sources Priority
//
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Default values (hardcoded)
//  2. Configuration files (./configs/config.yaml, ~/.shuttle/config.yaml, /etc/shuttle/config.yaml)
//  3. .env files
//  4. Environment variables (SHUTTLE_ prefix)
//
// # Usage Example
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("API: %s:%d\n", cfg.Server.Host, cfg.Server.Port)
//
// # Environment Variables
//
// Environment variables override all other configuration sources.
// Use SHUTTLE_ prefix and underscores for nested keys:
//   - SHUTTLE_SERVER_PORT=8001
//   - SHUTTLE_DOCKER_SOCKET=/var/run/docker.sock
//   - SHUTTLE_PROXY_FQDN=shuttleapp.rs
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure for the Shuttle gateway.
// It contains all configuration sections for the control-plane API, the
// user-facing proxy, the Docker backend, deployment lifecycle tuning,
// logging, and security.
type Config struct {
	// Server contains the control-plane API server configuration
	Server ServerConfig `mapstructure:"server"`

	// Proxy contains the user-facing reverse proxy configuration
	Proxy ProxyConfig `mapstructure:"proxy"`

	// Docker contains container backend settings
	Docker DockerConfig `mapstructure:"docker"`

	// Deployment contains project lifecycle tuning
	Deployment DeploymentConfig `mapstructure:"deployment"`

	// Logging contains logging settings
	Logging LoggingConfig `mapstructure:"logging"`

	// Security contains authentication and rate limiting settings
	Security SecurityConfig `mapstructure:"security"`
}

// ServerConfig contains the control-plane API server configuration.
type ServerConfig struct {
	// Host is the API bind address (default: 0.0.0.0)
	Host string `mapstructure:"host"`

	// Port is the API listen port (default: 8001)
	Port int `mapstructure:"port"`

	// ReadTimeout is the maximum duration for reading requests
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration for writing responses
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// ShutdownTimeout is the maximum duration for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Debug enables debug logging and additional endpoints
	Debug bool `mapstructure:"debug"`
}

// ProxyConfig contains the user-facing reverse proxy configuration.
type ProxyConfig struct {
	// FQDN is the base domain; projects are served as <name>.<fqdn>
	FQDN string `mapstructure:"fqdn"`

	// HTTPAddr is the plain HTTP listen address (default: 0.0.0.0:80)
	HTTPAddr string `mapstructure:"http_addr"`

	// HTTPSAddr is the TLS listen address (default: 0.0.0.0:443)
	HTTPSAddr string `mapstructure:"https_addr"`

	// TLSEnabled starts the HTTPS listener with the SNI resolver
	TLSEnabled bool `mapstructure:"tls_enabled"`

	// CertsPath is a directory of <hostname>.crt / <hostname>.key pairs
	// loaded into the resolver at startup
	CertsPath string `mapstructure:"certs_path"`
}

// DockerConfig contains container backend settings.
type DockerConfig struct {
	// Socket is the path to the Docker socket; empty uses the
	// environment (DOCKER_HOST etc.)
	Socket string `mapstructure:"socket"`

	// Image is the deployer image every project container runs
	Image string `mapstructure:"image"`

	// NetworkName is the bridge network project containers attach to
	NetworkName string `mapstructure:"network_name"`

	// StopTimeout is how long a container gets to exit before it is
	// killed
	StopTimeout time.Duration `mapstructure:"stop_timeout"`
}

// DeploymentConfig contains project lifecycle tuning.
type DeploymentConfig struct {
	// TickInterval is the spacing of lifecycle ticks for healthy
	// projects. CPU usage is sampled once per tick, so the idle
	// threshold is calibrated against this interval.
	TickInterval time.Duration `mapstructure:"tick_interval"`

	// PollInterval paces the fast startup transitions
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// StartTimeout is how long a container may take to reach running
	StartTimeout time.Duration `mapstructure:"start_timeout"`

	// TransitionTimeout bounds a single lifecycle transition
	TransitionTimeout time.Duration `mapstructure:"transition_timeout"`

	// IdleCPUThreshold is the per-minute CPU usage delta below which a
	// project counts as idle
	IdleCPUThreshold uint64 `mapstructure:"idle_cpu_threshold"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level"`

	// Format is the log format (json, text)
	Format string `mapstructure:"format"`

	// Output is the log output destination (stdout, file)
	Output string `mapstructure:"output"`
}

// SecurityConfig contains authentication and rate limiting settings.
type SecurityConfig struct {
	// RateLimit is the maximum requests per second per client
	RateLimit int `mapstructure:"rate_limit"`

	// AllowedOrigins are the CORS allowed origins
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// AuthEnabled enables JWT authentication on the control-plane API
	AuthEnabled bool `mapstructure:"auth_enabled"`

	// JWTSecret is the secret key for signing JWT tokens
	JWTSecret string `mapstructure:"jwt_secret"`

	// JWTExpiration is the JWT token expiration duration (default: 24h)
	JWTExpiration time.Duration `mapstructure:"jwt_expiration"`
}

var cfg *Config

// Load reads configuration from a file and environment variables.
// If cfgFile is empty, it searches for config.yaml in standard locations.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (SHUTTLE_ prefix)
//  2. .env file
//  3. Configuration file
//  4. Default values
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.shuttle")
		v.AddConfigPath("/etc/shuttle")
	}

	if err := v.ReadInConfig(); err != nil {
		// An explicitly named file that does not exist falls back to
		// defaults; any other read error is fatal.
		if cfgFile != "" {
			if !isFileNotFoundError(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.MergeInConfig() // Ignore error if .env file doesn't exist

	v.SetEnvPrefix("SHUTTLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.debug", false)

	v.SetDefault("proxy.fqdn", "unstable.shuttleapp.rs")
	v.SetDefault("proxy.http_addr", "0.0.0.0:80")
	v.SetDefault("proxy.https_addr", "0.0.0.0:443")
	v.SetDefault("proxy.tls_enabled", false)
	v.SetDefault("proxy.certs_path", "")

	v.SetDefault("docker.socket", "")
	v.SetDefault("docker.image", "shuttlehq/deployer:latest")
	v.SetDefault("docker.network_name", "shuttle")
	v.SetDefault("docker.stop_timeout", "30s")

	v.SetDefault("deployment.tick_interval", "1m")
	v.SetDefault("deployment.poll_interval", "5s")
	v.SetDefault("deployment.start_timeout", "2m")
	v.SetDefault("deployment.transition_timeout", "30s")
	v.SetDefault("deployment.idle_cpu_threshold", uint64(100_000_000))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("security.rate_limit", 100)
	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("security.auth_enabled", false)
	v.SetDefault("security.jwt_secret", "change-me-in-production")
	v.SetDefault("security.jwt_expiration", "24h")
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Proxy.FQDN == "" {
		return fmt.Errorf("proxy fqdn is required")
	}

	if cfg.Docker.Image == "" {
		return fmt.Errorf("docker image is required")
	}

	if cfg.Docker.NetworkName == "" {
		return fmt.Errorf("docker network name is required")
	}

	if cfg.Deployment.TickInterval <= 0 {
		return fmt.Errorf("deployment tick interval must be positive")
	}

	return nil
}

func Get() *Config {
	return cfg
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
