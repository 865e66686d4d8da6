package discovery

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/nfcprofile/internal/logging"
)

const (
	// ServiceType is the mDNS service type advertised by nfcprofiled
	ServiceType = "_nfcprofile._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for daemon discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is assumed when an entry carries no port
	DefaultPort = 8765
)

// TXT record keys
const (
	TxtVersion = "version"
	TxtTLS     = "tls"
	TxtPath    = "path"
)

// Advertisement is a running mDNS registration.
type Advertisement struct {
	server *zeroconf.Server
}

// Advertise registers the daemon on the local network until Shutdown is
// called. ifaces may be nil to use every multicast interface.
func Advertise(instance string, port int, version string, tls bool, ifaces []net.Interface) (*Advertisement, error) {
	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, TxtRecords(version, tls), ifaces)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	logging.Info("Advertising via mDNS",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)
	return &Advertisement{server: server}, nil
}

// Shutdown withdraws the registration.
func (a *Advertisement) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
}

// TxtRecords builds the TXT entries published with the service.
func TxtRecords(version string, tls bool) []string {
	t := "0"
	if tls {
		t = "1"
	}
	return []string{
		TxtVersion + "=" + version,
		TxtTLS + "=" + t,
		TxtPath + "=/tag",
	}
}

// Scanner handles mDNS daemon discovery
type Scanner struct {
	// Timeout is the maximum time to wait for daemon discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForDaemons collects every daemon that answers before the timeout.
// Duplicate announcements of the same instance are folded.
func (s *Scanner) ScanForDaemons(ctx context.Context) ([]*Daemon, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		mu      sync.Mutex
		daemons []*Daemon
		seen    = make(map[string]bool)
	)
	go func() {
		for entry := range entries {
			d := parseServiceEntry(entry)
			if d == nil {
				continue
			}
			mu.Lock()
			if !seen[d.Instance] {
				seen[d.Instance] = true
				daemons = append(daemons, d)
				logging.Debug("Found daemon", zap.String("daemon", d.String()))
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	return append([]*Daemon(nil), daemons...), nil
}

// WaitForDaemon returns the first daemon whose instance name matches, or
// any daemon when instance is empty.
func (s *Scanner) WaitForDaemon(ctx context.Context, instance string) (*Daemon, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Daemon, 1)

	go func() {
		for entry := range entries {
			d := parseServiceEntry(entry)
			if d != nil && (instance == "" || d.Instance == instance) {
				select {
				case found <- d:
				default:
				}
				cancel()
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case d := <-found:
		return d, nil
	case <-ctx.Done():
		select {
		case d := <-found:
			return d, nil
		default:
		}
		if instance == "" {
			return nil, fmt.Errorf("no daemon found within %s", s.Timeout)
		}
		return nil, fmt.Errorf("daemon %q not found within %s", instance, s.Timeout)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Daemon.
// Returns nil if the entry has no instance name or no address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Daemon {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		if key != "" {
			metadata[key] = value
		}
	}

	return &Daemon{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		TLS:          metadata[TxtTLS] == "1",
		Version:      metadata[TxtVersion],
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
