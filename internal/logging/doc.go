// Package logging holds the process-wide zap logger used by both binaries.
//
// Nothing is written until Initialize receives a level, either from config
// or NFCPROFILE_LOG_LEVEL, so command output stays clean by default. Levels
// are parsed by zapcore: debug for codec and websocket dumps, info for
// property writes and transitions, warn for bad desired values and corrupt
// backup blocks, error for failed transitions.
//
// The Log* helpers fix field names for the events logged from more than one
// package:
//
//	logging.LogPropertyChange("screen_timeout", "screen_off_timeout", 30000, 120000)
//	logging.LogTransition(key, "applied", elapsed)
//
// Tests swap in an observer core with Replace.
package logging
