package discovery

import (
	"net"
	"reflect"
	"testing"

	"github.com/grandcat/zeroconf"
)

func entry(instance, host string, port int, v4, v6 []net.IP, txt ...string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	e.HostName = host
	e.Port = port
	e.AddrIPv4 = v4
	e.AddrIPv6 = v6
	e.Text = txt
	return e
}

func TestParseServiceEntry(t *testing.T) {
	v4 := []net.IP{net.ParseIP("192.168.4.16")}
	v6 := []net.IP{net.ParseIP("fe80::1")}

	tests := []struct {
		name        string
		entry       *zeroconf.ServiceEntry
		wantNil     bool
		wantIP      string
		wantPort    int
		wantTLS     bool
		wantVersion string
	}{
		{
			name:        "full record",
			entry:       entry("kitchen", "pi.local.", 8765, v4, nil, TxtRecords("1.2.0", false)...),
			wantIP:      "192.168.4.16",
			wantPort:    8765,
			wantVersion: "1.2.0",
		},
		{
			name:     "tls advertised",
			entry:    entry("hall", "pi.local.", 443, v4, nil, "tls=1"),
			wantIP:   "192.168.4.16",
			wantPort: 443,
			wantTLS:  true,
		},
		{
			name:     "missing port uses default",
			entry:    entry("kitchen", "pi.local.", 0, v4, nil),
			wantIP:   "192.168.4.16",
			wantPort: DefaultPort,
		},
		{
			name:     "prefers IPv4",
			entry:    entry("kitchen", "pi.local.", 8765, v4, v6),
			wantIP:   "192.168.4.16",
			wantPort: 8765,
		},
		{
			name:     "IPv6 only",
			entry:    entry("kitchen", "pi.local.", 8765, nil, v6),
			wantIP:   "fe80::1",
			wantPort: 8765,
		},
		{
			name:    "no address",
			entry:   entry("kitchen", "pi.local.", 8765, nil, nil),
			wantNil: true,
		},
		{
			name:    "no instance",
			entry:   entry("", "pi.local.", 8765, v4, nil),
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := parseServiceEntry(tt.entry)
			if tt.wantNil {
				if d != nil {
					t.Fatalf("parseServiceEntry() = %v, want nil", d)
				}
				return
			}
			if d == nil {
				t.Fatal("parseServiceEntry() = nil")
			}
			if d.IP != tt.wantIP {
				t.Errorf("IP = %v, want %v", d.IP, tt.wantIP)
			}
			if d.Port != tt.wantPort {
				t.Errorf("Port = %v, want %v", d.Port, tt.wantPort)
			}
			if d.TLS != tt.wantTLS {
				t.Errorf("TLS = %v, want %v", d.TLS, tt.wantTLS)
			}
			if d.Version != tt.wantVersion {
				t.Errorf("Version = %v, want %v", d.Version, tt.wantVersion)
			}
			if d.DiscoveredAt.IsZero() {
				t.Error("DiscoveredAt not set")
			}
		})
	}
}

func TestParseServiceEntry_Metadata(t *testing.T) {
	d := parseServiceEntry(entry("kitchen", "pi.local.", 8765,
		[]net.IP{net.ParseIP("10.0.0.5")}, nil, "path=/tag", "flag", "=novalue", "k=a=b"))
	if d == nil {
		t.Fatal("parseServiceEntry() = nil")
	}

	want := map[string]string{"path": "/tag", "flag": "", "k": "a=b"}
	if !reflect.DeepEqual(d.Metadata, want) {
		t.Errorf("Metadata = %v, want %v", d.Metadata, want)
	}
}

func TestTxtRecords(t *testing.T) {
	got := TxtRecords("dev", true)
	want := []string{"version=dev", "tls=1", "path=/tag"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TxtRecords() = %v, want %v", got, want)
	}
}

func TestNewScanner(t *testing.T) {
	if s := NewScanner(); s.Timeout != DefaultScanTimeout {
		t.Errorf("Timeout = %v, want %v", s.Timeout, DefaultScanTimeout)
	}
}
