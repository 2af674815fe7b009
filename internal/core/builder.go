package core

import (
	"fmt"
	"time"

	"chatserve/config"
	"chatserve/internal/capability"
	"chatserve/internal/metrics"
	"chatserve/internal/transport"
	"chatserve/tunnel"
	"chatserve/util"
)

// Build constructs the appropriate Mode from the given configuration.
func Build(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	if cfg.Connect {
		return buildConnect(cfg, logger, m)
	}
	return buildListen(cfg, logger, m)
}

// ── mode builders ────────────────────────────────────────────────────

func buildListen(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	return &ListenMode{
		Listener:   buildListener(cfg, logger),
		Capability: &capability.Responder{Name: cfg.Handle},
		BufferSize: cfg.BufferSize,
		Logger:     logger,
		Metrics:    m,
	}, nil
}

func buildConnect(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("client mode requires a host")
	}
	return &ConnectMode{
		Dialer: &transport.TCPDialer{Timeout: defaultDialTimeout},
		Capability: &capability.Initiator{
			Username: cfg.Username,
			Greeting: cfg.PortArg,
			Server:   cfg.Host + ":" + cfg.PortArg,
		},
		Address:    util.FormatAddr(cfg.Host, cfg.Port),
		BufferSize: cfg.BufferSize,
		Logger:     logger,
		Metrics:    m,
	}, nil
}

// ── shared helpers ───────────────────────────────────────────────────

const defaultDialTimeout = 30 * time.Second

// buildListener picks a local socket or an SSH gateway forward.
func buildListener(cfg *config.Config, logger *util.Logger) transport.Listener {
	if cfg.ReverseTunnelEnabled {
		return transport.NewSSHReverseListener(&tunnel.SSHConfig{
			User:          cfg.ReverseTunnelUser,
			Host:          cfg.ReverseTunnelHost,
			Port:          cfg.ReverseTunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			KeepAlive:     config.DefaultKeepAliveInterval * time.Second,
		}, cfg.RemoteBindAddress, cfg.RemotePort, logger)
	}
	return &transport.TCPListener{Address: fmt.Sprintf(":%d", cfg.Port)}
}
