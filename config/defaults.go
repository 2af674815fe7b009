package config

import "chatserve/internal/chat"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// DefaultHandle is the server's display name.
	DefaultHandle = chat.DefaultHandle

	// DefaultBufferSize is how many bytes one receive reads.
	DefaultBufferSize = 1024

	// MaxBufferSize caps --buffer-size.
	MaxBufferSize = 64 * 1024

	// MaxUsernameLen is the longest client username.
	MaxUsernameLen = chat.MaxUsernameLen

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultKeepAliveInterval is the SSH keepalive interval in seconds.
	DefaultKeepAliveInterval = 30
)
