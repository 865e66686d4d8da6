// Package discovery advertises nfcprofiled over mDNS and finds running
// daemons from the CLI.
//
// The daemon registers a "_nfcprofile._tcp" service whose TXT record
// carries the build version, whether TLS is on, and the websocket path:
//
//	version=1.2.0 tls=0 path=/tag
//
// Tag bridges and `nfcprofile scan` browse for that service:
//
//	scanner := discovery.NewScanner()
//	daemons, err := scanner.ScanForDaemons(ctx)
//	for _, d := range daemons {
//	    fmt.Println(d.Instance, d.TagURL())
//	}
//
// Discovery needs multicast on the local segment and UDP port 5353 open.
package discovery
