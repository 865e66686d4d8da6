// Package setting implements the units of device state that a profile
// toggles: airplane mode, screen timeout, screen brightness, the two
// vibrator channels and the ringer mode.
//
// # Lifecycle
//
// A Setting is built fresh each time a profile is loaded. Load reads the
// desired value from the profile's preference store; a missing entry or the
// value "unchanged" leaves the setting inert. Applying is an explicit two
// phase operation:
//
//  1. CaptureSnapshot writes the current system values into the snapshot
//     store under the setting's reset keys. This always happens, even for
//     inert settings, so a later profile can restore from them.
//  2. Mutate writes the desired value to the system.
//
// Restore reads the snapshot back and writes it to the system, falling back
// to a per-setting default when the snapshot is missing. Inert settings do
// not restore.
//
// # Snapshot keys
//
// Reset keys are "RESET_<name>" or "RESET_<name>_<suffix>" and live in the
// default preference store, so they survive process restarts and travel
// with the "main" backup block.
//
// # Errors
//
// Missing properties fall back to defaults and are never reported.
// Malformed or unknown desired values are logged and treated as unset. Only
// failed property writes, failed reads and failed snapshot commits are
// returned, as *SettingError.
package setting
