// Package urls builds and parses the URIs written to NFC tags.
//
// A tag carries a single URI of the form nfcprofile://<key>. On read the
// host component is the profile key handed to the tracker.
//
//	uri := urls.TagURI(key)          // "nfcprofile://3f2a..."
//	key, err := urls.KeyFromURI(uri) // "3f2a..."
package urls
