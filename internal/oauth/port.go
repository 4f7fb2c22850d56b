package oauth

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// DefaultCallbackPort is used when the configured redirect URI cannot be
// parsed at all.
const DefaultCallbackPort = 8082

// portProbeTimeout bounds the connection attempt in IsPortAvailable.
const portProbeTimeout = 1 * time.Second

// ExtractPort derives the listening port from a redirect URI.
// It returns the URI's explicit port when present, 80 when the URI parses
// to a host without a port, and DefaultCallbackPort when the URI cannot be
// parsed at all.
func ExtractPort(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return DefaultCallbackPort
	}

	portStr := u.Port()
	if portStr == "" {
		return 80
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return DefaultCallbackPort
	}
	return port
}

// IsPortAvailable probes whether the loopback port is free by attempting a
// short-timeout connection: the port is available only if the attempt
// fails. This is a check-then-act probe, not a reservation — another
// process can take the port between the probe and a subsequent bind, in
// which case the bind itself reports the failure.
func IsPortAvailable(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", port), portProbeTimeout)
	if err != nil {
		return true
	}
	_ = conn.Close()
	return false
}
