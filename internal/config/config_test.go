package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// TestLoadDefaults tests that default configuration values are loaded correctly.
func TestLoadDefaults(t *testing.T) {
	// Load configuration without a config file
	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	// Test Server defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected default server host '0.0.0.0', got '%s'", cfg.Server.Host)
	}
	if cfg.Server.Port != 8001 {
		t.Errorf("Expected default server port 8001, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Expected default read timeout 30s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("Expected default write timeout 30s, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.Debug != false {
		t.Errorf("Expected default debug false, got %v", cfg.Server.Debug)
	}

	// Test Proxy defaults
	if cfg.Proxy.FQDN != "unstable.shuttleapp.rs" {
		t.Errorf("Expected default proxy fqdn 'unstable.shuttleapp.rs', got '%s'", cfg.Proxy.FQDN)
	}
	if cfg.Proxy.HTTPAddr != "0.0.0.0:80" {
		t.Errorf("Expected default http addr '0.0.0.0:80', got '%s'", cfg.Proxy.HTTPAddr)
	}
	if cfg.Proxy.HTTPSAddr != "0.0.0.0:443" {
		t.Errorf("Expected default https addr '0.0.0.0:443', got '%s'", cfg.Proxy.HTTPSAddr)
	}
	if cfg.Proxy.TLSEnabled != false {
		t.Errorf("Expected default tls_enabled false, got %v", cfg.Proxy.TLSEnabled)
	}

	// Test Docker defaults
	if cfg.Docker.Socket != "" {
		t.Errorf("Expected default docker socket '', got '%s'", cfg.Docker.Socket)
	}
	if cfg.Docker.Image != "shuttlehq/deployer:latest" {
		t.Errorf("Expected default image 'shuttlehq/deployer:latest', got '%s'", cfg.Docker.Image)
	}
	if cfg.Docker.NetworkName != "shuttle" {
		t.Errorf("Expected default network name 'shuttle', got '%s'", cfg.Docker.NetworkName)
	}
	if cfg.Docker.StopTimeout != 30*time.Second {
		t.Errorf("Expected default stop timeout 30s, got %v", cfg.Docker.StopTimeout)
	}

	// Test Deployment defaults
	if cfg.Deployment.TickInterval != time.Minute {
		t.Errorf("Expected default tick interval 1m, got %v", cfg.Deployment.TickInterval)
	}
	if cfg.Deployment.PollInterval != 5*time.Second {
		t.Errorf("Expected default poll interval 5s, got %v", cfg.Deployment.PollInterval)
	}
	if cfg.Deployment.StartTimeout != 2*time.Minute {
		t.Errorf("Expected default start timeout 2m, got %v", cfg.Deployment.StartTimeout)
	}
	if cfg.Deployment.TransitionTimeout != 30*time.Second {
		t.Errorf("Expected default transition timeout 30s, got %v", cfg.Deployment.TransitionTimeout)
	}
	if cfg.Deployment.IdleCPUThreshold != 100_000_000 {
		t.Errorf("Expected default idle cpu threshold 100000000, got %d", cfg.Deployment.IdleCPUThreshold)
	}

	// Test Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default logging level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default logging format 'text', got '%s'", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default logging output 'stdout', got '%s'", cfg.Logging.Output)
	}

	// Test Security defaults
	if cfg.Security.RateLimit != 100 {
		t.Errorf("Expected default rate limit 100, got %d", cfg.Security.RateLimit)
	}
	if len(cfg.Security.AllowedOrigins) != 1 || cfg.Security.AllowedOrigins[0] != "*" {
		t.Errorf("Expected default allowed origins ['*'], got %v", cfg.Security.AllowedOrigins)
	}
	if cfg.Security.AuthEnabled != false {
		t.Errorf("Expected default auth_enabled false, got %v", cfg.Security.AuthEnabled)
	}
	if cfg.Security.JWTSecret != "change-me-in-production" {
		t.Errorf("Expected default jwt_secret 'change-me-in-production', got '%s'", cfg.Security.JWTSecret)
	}
	if cfg.Security.JWTExpiration != 24*time.Hour {
		t.Errorf("Expected default jwt expiration 24h, got %v", cfg.Security.JWTExpiration)
	}
}

// TestValidation tests the configuration validation logic.
func TestValidation(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8001},
			Proxy:  ProxyConfig{FQDN: "shuttleapp.test"},
			Docker: DockerConfig{
				Image:       "shuttlehq/deployer:latest",
				NetworkName: "shuttle",
			},
			Deployment: DeploymentConfig{TickInterval: time.Minute},
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr bool
		errMsg    string
	}{
		{
			name:      "valid configuration",
			mutate:    func(c *Config) {},
			expectErr: false,
		},
		{
			name:      "invalid port - too low",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			expectErr: true,
			errMsg:    "invalid server port",
		},
		{
			name:      "invalid port - too high",
			mutate:    func(c *Config) { c.Server.Port = 70000 },
			expectErr: true,
			errMsg:    "invalid server port",
		},
		{
			name:      "missing proxy fqdn",
			mutate:    func(c *Config) { c.Proxy.FQDN = "" },
			expectErr: true,
			errMsg:    "proxy fqdn is required",
		},
		{
			name:      "missing docker image",
			mutate:    func(c *Config) { c.Docker.Image = "" },
			expectErr: true,
			errMsg:    "docker image is required",
		},
		{
			name:      "missing network name",
			mutate:    func(c *Config) { c.Docker.NetworkName = "" },
			expectErr: true,
			errMsg:    "docker network name is required",
		},
		{
			name:      "zero tick interval",
			mutate:    func(c *Config) { c.Deployment.TickInterval = 0 },
			expectErr: true,
			errMsg:    "tick interval must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validate(cfg)
			if tt.expectErr {
				if err == nil {
					t.Errorf("Expected error containing '%s', got nil", tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error containing '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
			}
		})
	}
}

// TestEnvironmentVariableOverride tests that environment variables override config values.
func TestEnvironmentVariableOverride(t *testing.T) {
	t.Setenv("SHUTTLE_SERVER_PORT", "9999")
	t.Setenv("SHUTTLE_PROXY_FQDN", "apps.example.com")
	t.Setenv("SHUTTLE_DEPLOYMENT_IDLE_CPU_THRESHOLD", "5000000")

	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999 from environment, got %d", cfg.Server.Port)
	}
	if cfg.Proxy.FQDN != "apps.example.com" {
		t.Errorf("Expected fqdn 'apps.example.com' from environment, got '%s'", cfg.Proxy.FQDN)
	}
	if cfg.Deployment.IdleCPUThreshold != 5000000 {
		t.Errorf("Expected idle cpu threshold 5000000 from environment, got %d", cfg.Deployment.IdleCPUThreshold)
	}
}

// TestGet tests the global config getter.
func TestGet(t *testing.T) {
	// Load configuration first
	_, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Get should return the loaded config
	retrieved := Get()
	if retrieved == nil {
		t.Error("Get() returned nil")
		return
	}

	// Verify it's the same instance
	if retrieved.Server.Port != 8001 {
		t.Errorf("Expected port 8001 from Get(), got %d", retrieved.Server.Port)
	}
}

// TestLoadIgnoresMissingDotEnv tests that the config search tolerates a missing .env file.
func TestLoadIgnoresMissingDotEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	if _, err := Load(""); err != nil {
		t.Fatalf("Load failed without config or .env file: %v", err)
	}
}
