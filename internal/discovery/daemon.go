package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Daemon represents an nfcprofiled instance found on the network
type Daemon struct {
	// Instance is the advertised instance name (e.g., "nfcprofile-kitchen")
	Instance string

	// Hostname is the mDNS hostname (e.g., "pi.local.")
	Hostname string

	// IP is the first advertised address, IPv4 preferred
	IP string

	// Port is the bridge server port
	Port int

	// TLS is true when the daemon advertises tls=1
	TLS bool

	// Version is the daemon build version from the TXT record
	Version string

	// Metadata contains every mDNS TXT record entry
	Metadata map[string]string

	// DiscoveredAt is when the daemon was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the daemon
func (d *Daemon) String() string {
	return fmt.Sprintf("nfcprofiled %s (%s) at %s", d.Instance, d.Hostname, d.hostPort())
}

// BaseURL returns the HTTP base URL for the daemon
func (d *Daemon) BaseURL() string {
	scheme := "http"
	if d.TLS {
		scheme = "https"
	}
	return scheme + "://" + d.hostPort()
}

// TagURL returns the websocket URL a tag bridge connects to
func (d *Daemon) TagURL() string {
	scheme := "ws"
	if d.TLS {
		scheme = "wss"
	}
	return scheme + "://" + d.hostPort() + "/tag"
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Daemon) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}

func (d *Daemon) hostPort() string {
	return net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}
