// Package config loads, normalizes, and validates royaltysplit configuration.
//
// Settings come from a TOML file (by default ~/.config/royaltysplit/config.toml,
// or royaltysplit.toml in the working directory), then from the environment
// (DB_PATH, LISTEN_ADDR, JWT_SECRET, LOG_LEVEL), which takes precedence. Paths
// are expanded to absolute form and every section is checked by Validate.
package config
