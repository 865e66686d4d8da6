package discovery

import (
	"testing"
)

func TestDaemon_String(t *testing.T) {
	d := &Daemon{
		Instance: "nfcprofile-kitchen",
		Hostname: "pi.local.",
		IP:       "192.168.4.16",
		Port:     8765,
	}

	expected := "nfcprofiled nfcprofile-kitchen (pi.local.) at 192.168.4.16:8765"
	if d.String() != expected {
		t.Errorf("Daemon.String() = %v, want %v", d.String(), expected)
	}
}

func TestDaemon_URLs(t *testing.T) {
	tests := []struct {
		name    string
		daemon  *Daemon
		wantURL string
		wantTag string
	}{
		{
			name:    "plain",
			daemon:  &Daemon{IP: "192.168.4.16", Port: 8765},
			wantURL: "http://192.168.4.16:8765",
			wantTag: "ws://192.168.4.16:8765/tag",
		},
		{
			name:    "tls",
			daemon:  &Daemon{IP: "10.0.0.5", Port: 443, TLS: true},
			wantURL: "https://10.0.0.5:443",
			wantTag: "wss://10.0.0.5:443/tag",
		},
		{
			name:    "ipv6",
			daemon:  &Daemon{IP: "fe80::1", Port: 8765},
			wantURL: "http://[fe80::1]:8765",
			wantTag: "ws://[fe80::1]:8765/tag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.daemon.BaseURL(); got != tt.wantURL {
				t.Errorf("BaseURL() = %v, want %v", got, tt.wantURL)
			}
			if got := tt.daemon.TagURL(); got != tt.wantTag {
				t.Errorf("TagURL() = %v, want %v", got, tt.wantTag)
			}
		})
	}
}

func TestDaemon_GetMetadata_NilMap(t *testing.T) {
	d := &Daemon{}
	if got := d.GetMetadata("anything"); got != "" {
		t.Errorf("GetMetadata() with nil map = %v, want empty string", got)
	}
}
