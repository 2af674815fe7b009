package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go, applied by ApplyDefaults)

import (
	"os"
	"strconv"
	"strings"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the CHATSERVE_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  Call it BEFORE flag parsing
// so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("CHATSERVE_HOST"); v != "" {
		cfg.Host = v
	}
	if v := envInt("CHATSERVE_PORT"); v > 0 {
		cfg.Port = v
	}
	if v := os.Getenv("CHATSERVE_HANDLE"); v != "" {
		cfg.Handle = v
	}
	if v := os.Getenv("CHATSERVE_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := envInt("CHATSERVE_BUFFER_SIZE"); v > 0 {
		cfg.BufferSize = v
	}

	// Reverse tunnel
	if v := os.Getenv("CHATSERVE_REVERSE_TUNNEL"); v != "" {
		cfg.ReverseTunnelSpec = v
	}
	if v := envInt("CHATSERVE_REMOTE_PORT"); v > 0 {
		cfg.RemotePort = v
	}
	if v := os.Getenv("CHATSERVE_REMOTE_BIND_ADDRESS"); v != "" {
		cfg.RemoteBindAddress = v
	}
	if v := os.Getenv("CHATSERVE_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("CHATSERVE_SSH_PASSWORD") {
		cfg.SSHPassword = true
	}
	if envBool("CHATSERVE_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("CHATSERVE_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := os.Getenv("CHATSERVE_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Output
	if v := envInt("CHATSERVE_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
	if envBool("CHATSERVE_METRICS") {
		cfg.Metrics = true
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}
