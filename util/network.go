package util

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// FormatAddr returns "host:port".
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// HostPort formats addr the way chat events print a peer: "host:port",
// without the brackets net.JoinHostPort puts around IPv6 hosts.
func HostPort(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host + ":" + port
}

// fqdnTimeout bounds the name lookup behind LocalFQDN.
const fqdnTimeout = 2 * time.Second

// LocalFQDN returns the fully qualified name of this machine, falling
// back to the bare hostname, then to "localhost".
func LocalFQDN(ctx context.Context) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "localhost"
	}
	ctx, cancel := context.WithTimeout(ctx, fqdnTimeout)
	defer cancel()
	cname, err := net.DefaultResolver.LookupCNAME(ctx, host)
	if err != nil || cname == "" {
		return host
	}
	return strings.TrimSuffix(cname, ".")
}

// FindFreePort returns an available TCP port on 127.0.0.1.
func FindFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("finding free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
