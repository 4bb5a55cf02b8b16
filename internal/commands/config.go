package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runShowConfig,
}

var initConfigCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	RunE:  runInitConfig,
}

func init() {
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(initConfigCmd)
}

func runShowConfig(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	defaultConfig := `# Shuttle Configuration

server:
  host: 0.0.0.0
  port: 8001
  read_timeout: 30s
  write_timeout: 30s
  shutdown_timeout: 10s
  debug: false

proxy:
  fqdn: unstable.shuttleapp.rs
  http_addr: 0.0.0.0:80
  https_addr: 0.0.0.0:443
  tls_enabled: false
  certs_path: ""

docker:
  socket: ""
  image: shuttlehq/deployer:latest
  network_name: shuttle
  stop_timeout: 30s

deployment:
  tick_interval: 1m
  poll_interval: 5s
  start_timeout: 2m
  transition_timeout: 30s
  idle_cpu_threshold: 100000000

logging:
  level: info
  format: text
  output: stdout

security:
  rate_limit: 100
  allowed_origins:
    - "*"
  auth_enabled: false
`

	if err := os.WriteFile("config.yaml", []byte(defaultConfig), 0644); err != nil {
		return err
	}

	fmt.Println("✓ Created config.yaml")
	return nil
}
