// Package core is the orchestration layer.  It composes transports
// and capabilities into complete operational modes and provides a
// builder that selects the right mode from a Config.
//
// Architecture layers (bottom → top):
//
//	transport  →  session  →  capability  →  core  →  cmd (CLI)
package core

import "context"

// Mode represents a complete operational mode of chatserve (serve or
// connect).  Each mode owns its full lifecycle from connection
// establishment to teardown.  Run returning nil means a clean exit.
type Mode interface {
	Run(ctx context.Context) error
}
