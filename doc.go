// Package shuttle is the gateway daemon for a serverless web
// application platform.
//
// # Overview
//
// The gateway owns one Docker container per project and drives it
// through an explicit lifecycle: create, attach to the platform
// network, start, health-check, serve, and stop again once the project
// has been idle long enough. Public traffic reaches projects through a
// Host-routed reverse proxy; a control-plane API creates, wakes and
// deletes projects.
//
// The daemon consists of three main components:
//   - Control-plane API: REST endpoints for project lifecycle (Echo)
//   - Reverse proxy: subdomain routing with SNI TLS termination
//   - Lifecycle engine: per-project state machines over the Docker API
//
// # Architecture
//
//	┌──────────────────┐      ┌───────────────────┐
//	│  Reverse Proxy   │      │ Control-plane API │
//	│  *.fqdn :80/:443 │      │   (Echo REST)     │
//	└────────┬─────────┘      └────────┬──────────┘
//	         │ address registry        │
//	┌────────▼─────────────────────────▼─────────┐
//	│              Lifecycle Engine              │
//	│   (one driver + state machine per project) │
//	└────────────────────┬───────────────────────┘
//	                     │
//	┌────────────────────▼───────────────────────┐
//	│                Docker Engine               │
//	└────────────────────────────────────────────┘
//
// # Usage
//
// Start the gateway:
//
//	shuttled server --config configs/config.yaml
//
// # Configuration
//
// Configuration can be provided via:
//   - YAML file (configs/config.yaml)
//   - Environment variables (SHUTTLE_ prefix)
//   - .env file
//
// Example configuration:
//
//	server:
//	  host: 0.0.0.0
//	  port: 8001
//	proxy:
//	  fqdn: unstable.shuttleapp.rs
//	  http_addr: 0.0.0.0:80
//	docker:
//	  image: shuttlehq/deployer:latest
//	  network_name: shuttle
//	deployment:
//	  idle_cpu_threshold: 100000000
package shuttle
