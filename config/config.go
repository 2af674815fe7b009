// Package config defines the runtime configuration for chatserve and
// provides helpers for parsing ports and tunnel specifications.
package config

import (
	"fmt"
	"regexp"
	"strconv"

	"chatserve/internal/chat"
	ncerr "chatserve/internal/errors"
)

// Config holds every tuneable for one chatserve process.
type Config struct {
	// ── Mode ─────────────────────────────────────────────────────────
	Connect bool   // true → client mode, false → serve mode
	Host    string // client mode: server to connect to
	Port    int    // serve: listen port; client: server port
	PortArg string // port exactly as typed; the client sends it as its first message

	// ── Chat ─────────────────────────────────────────────────────────
	Handle     string // server display name, including the "> " suffix
	Username   string // client username; prompted for when empty
	BufferSize int    // bytes read per receive

	// ── Reverse SSH tunnel (serve mode) ──────────────────────────────
	ReverseTunnelSpec    string // raw [user@]host[:port] from -R
	ReverseTunnelEnabled bool
	ReverseTunnelUser    string
	ReverseTunnelHost    string
	ReverseTunnelPort    int
	RemotePort           int
	RemoteBindAddress    string
	SSHKeyPath           string
	SSHPassword          bool // true → prompt interactively
	UseSSHAgent          bool
	StrictHostKey        bool
	KnownHostsPath       string

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
	Metrics bool
}

// ParsePort accepts a decimal port number in 1-65535.
func ParsePort(spec string) (int, error) {
	port, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", spec)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	return user, host, port, nil
}

// ── Defaults & validation ────────────────────────────────────────────

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Handle == "" {
		c.Handle = DefaultHandle
	}
	if c.BufferSize == 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.PortArg == "" && c.Port > 0 {
		c.PortArg = strconv.Itoa(c.Port)
	}
	// The gateway exposes the same port number unless told otherwise.
	if c.ReverseTunnelEnabled && c.RemotePort == 0 {
		c.RemotePort = c.Port
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		var v interface{}
		if c.Port != 0 {
			v = c.Port
		}
		return &ncerr.ConfigError{
			Field:   "port",
			Value:   v,
			Message: "a port between 1 and 65535 is required",
			Hint:    "chatserve <port> to serve, chatserve <host> <port> to connect",
		}
	}

	if c.BufferSize < 0 || c.BufferSize > MaxBufferSize {
		return &ncerr.ConfigError{
			Field:   "buffer-size",
			Value:   c.BufferSize,
			Message: fmt.Sprintf("must be between 1 and %d", MaxBufferSize),
		}
	}

	if c.Connect {
		if c.Host == "" {
			return &ncerr.ConfigError{Field: "host", Message: "client mode requires a host"}
		}
		if c.ReverseTunnelEnabled {
			return &ncerr.ConfigError{
				Field:   "reverse-tunnel",
				Value:   c.ReverseTunnelSpec,
				Message: "only available when serving",
				Hint:    "drop the host argument to run the server",
			}
		}
		if c.Username != "" {
			if err := chat.ValidateUsername(c.Username); err != nil {
				return &ncerr.ConfigError{Field: "username", Value: c.Username, Message: err.Error()}
			}
		}
	}

	if c.ReverseTunnelEnabled {
		if c.ReverseTunnelHost == "" {
			return &ncerr.ConfigError{Field: "reverse-tunnel", Message: "tunnel host is required"}
		}
		if c.RemotePort == 0 {
			return &ncerr.ConfigError{
				Field:   "remote-port",
				Message: "required with --reverse-tunnel",
				Hint:    "pick the port the gateway should expose, e.g. --remote-port 50000",
			}
		}
		if c.RemotePort < 1 || c.RemotePort > 65535 {
			return &ncerr.ConfigError{
				Field:   "remote-port",
				Value:   c.RemotePort,
				Message: "out of range 1-65535",
			}
		}
	}

	return nil
}
