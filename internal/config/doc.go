// Package config handles configuration loading for dexbot.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	tailscale:
//	  auth_key: "${TS_AUTHKEY}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	sessions:
//	  horizon: "24h"
//	  eviction_interval: "1h"
//	  message_timeout: "10s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"  # Health and status endpoint
//
// Database:
//
//	database:
//	  path: "/var/lib/dexbot/bot.db"
//
// Bot identity and content:
//
//	bot:
//	  admin_number: "+258855337491"
//	  table_image: "./assets/tabela.jpg"
//	  persist_queue_size: 256
//
// Session lifecycle:
//
//	sessions:
//	  horizon: "24h"            # Evict conversations idle longer than this
//	  eviction_interval: "1h"   # How often the eviction sweep runs
//	  message_timeout: "10s"    # Per-message handling deadline
//
// Maintenance:
//
//	maintenance:
//	  backup_dir: "./backups"   # Daily registry snapshots land here
//
// Tailscale:
//
//	tailscale:
//	  enabled: false
//	  hostname: "dexbot"
//	  auth_key: "${TS_AUTHKEY}"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("/etc/dexbot/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
