// Package cmd wires up the CLI flags and dispatches to the chat core.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"chatserve/config"
	"chatserve/internal/core"
	"chatserve/internal/metrics"
	"chatserve/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X chatserve/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// stdout and stderr are swapped out by tests.
var (
	stdout io.Writer = os.Stdout //nolint:gochecknoglobals
	stderr io.Writer = os.Stderr //nolint:gochecknoglobals
)

// Execute parses args and runs the chat server or client.
func Execute(ctx context.Context, args []string) error {
	cfg := &config.Config{}
	config.LoadFromEnv(cfg)
	envVerbose := cfg.Verbose

	fs := flag.NewFlagSet("chatserve", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Environment values become the flag defaults so flags win.

	// ── chat ─────────────────────────────────────────────────────
	fs.StringVar(&cfg.Handle, "handle", cfg.Handle, "Server display name (default \""+config.DefaultHandle+"\")")
	fs.IntVar(&cfg.BufferSize, "buffer-size", cfg.BufferSize, "Bytes read per message (default 1024)")
	fs.StringVarP(&cfg.Username, "username", "u", cfg.Username, "Client username, 1-10 characters (prompted if empty)")

	// ── reverse SSH tunnel ───────────────────────────────────────
	fs.StringVarP(&cfg.ReverseTunnelSpec, "reverse-tunnel", "R", cfg.ReverseTunnelSpec, "Serve on an SSH gateway via [user@]host[:port]")
	fs.IntVar(&cfg.RemotePort, "remote-port", cfg.RemotePort, "Port to open on the gateway (default: the listen port)")
	fs.StringVar(&cfg.RemoteBindAddress, "remote-bind-address", cfg.RemoteBindAddress, "Gateway bind address (default: gateway decides)")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&cfg.Metrics, "metrics", cfg.Metrics, "Print session counters as JSON on exit")

	var showVersion, showHelp, dryRun bool
	fs.BoolVar(&dryRun, "dry-run", false, "Validate configuration and exit")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !fs.Changed("verbose") {
		cfg.Verbose = envVerbose
	}

	if showHelp || (len(args) == 0 && cfg.Port == 0) {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "chatserve %s\n", version)
		return nil
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── reverse tunnel spec ──────────────────────────────────────
	if cfg.ReverseTunnelSpec != "" {
		user, host, port, err := config.ParseTunnelSpec(cfg.ReverseTunnelSpec)
		if err != nil {
			return fmt.Errorf("reverse tunnel: %w", err)
		}
		cfg.ReverseTunnelEnabled = true
		cfg.ReverseTunnelUser = user
		cfg.ReverseTunnelHost = host
		cfg.ReverseTunnelPort = port
	}

	// ── validate ─────────────────────────────────────────────────
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	if dryRun {
		printPlan(cfg)
		return nil
	}

	// ── build & run ──────────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)

	var m *metrics.Collector
	if cfg.Metrics {
		m = metrics.New()
		defer func() { fmt.Fprintln(stderr, m.JSON()) }()
	}

	mode, err := core.Build(cfg, logger, m)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

// parsePositional reads "<port>" (serve) or "<host> <port>" (connect).
// A host from CHATSERVE_HOST also selects client mode.
func parsePositional(cfg *config.Config, remaining []string) error {
	switch len(remaining) {
	case 0:
		// port (and maybe host) came from the environment
	case 1:
		cfg.PortArg = remaining[0]
	case 2:
		cfg.Host = remaining[0]
		cfg.PortArg = remaining[1]
	default:
		return fmt.Errorf("too many arguments (use --help for usage)")
	}

	if cfg.PortArg != "" {
		port, err := config.ParsePort(cfg.PortArg)
		if err != nil {
			return fmt.Errorf("port: %w", err)
		}
		cfg.Port = port
	}
	cfg.Connect = cfg.Host != ""
	return nil
}

func printPlan(cfg *config.Config) {
	switch {
	case cfg.Connect:
		fmt.Fprintf(stdout, "would connect to %s as %q\n",
			util.FormatAddr(cfg.Host, cfg.Port), cfg.Username)
	case cfg.ReverseTunnelEnabled:
		fmt.Fprintf(stdout, "would serve on %s:%d via ssh %s@%s:%d as %q\n",
			cfg.RemoteBindAddress, cfg.RemotePort,
			cfg.ReverseTunnelUser, cfg.ReverseTunnelHost, cfg.ReverseTunnelPort, cfg.Handle)
	default:
		fmt.Fprintf(stdout, "would serve on port %d as %q\n", cfg.Port, cfg.Handle)
	}
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(stderr, `chatserve – two-party TCP chat v%s

Usage:
  chatserve [options] <port>              Serve: wait for one client at a time
  chatserve [options] <host> <port>       Connect to a chat server

Type /quit to end a chat.  When the server's operator types /quit the
server stops listening and exits.

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(stderr, `
Examples:
  chatserve 30020                                   Serve on port 30020
  chatserve --handle "ops> " 30020                  Serve with another name
  chatserve -u ann chat.example.com 30020           Connect as ann
  chatserve -R admin@bastion 30020                  Serve on a gateway's port 30020
`)
}
