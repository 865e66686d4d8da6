// Package sysprop defines the accessor through which settings read and
// write named system properties, and the implementations used by the CLI,
// the daemon and tests.
//
// Property reads report ErrNotFound when a property has never been set;
// callers fall back to their own defaults in that case. Broadcast publishes
// a change notification (airplane mode toggles, feedback pulses) to whoever
// is observing the host.
package sysprop
