package urls

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Scheme is the URI scheme registered for profile tags.
const Scheme = "nfcprofile"

// Prefix is prepended to a profile key to form the tag payload.
const Prefix = Scheme + "://"

// Documentation is the project guide linked from CLI help output.
const Documentation = "https://muurk.github.io/nfcprofile/"

// ErrNotProfileURI is returned when a URI does not use the profile scheme
// or carries no key.
var ErrNotProfileURI = errors.New("not a profile tag URI")

// TagURI returns the URI to write to a tag for the given profile key.
func TagURI(key string) string {
	return Prefix + key
}

// KeyFromURI extracts the profile key from a tag URI. A bare key with no
// scheme is accepted as-is so the CLI can take either form.
func KeyFromURI(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNotProfileURI
	}
	if !strings.Contains(raw, "://") {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse tag URI: %w", err)
	}
	if u.Scheme != Scheme || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrNotProfileURI, raw)
	}
	return u.Host, nil
}
