// Package backup serializes preference stores into a portable byte stream
// and restores them.
//
// # Stream format
//
// A backup is a sequence of named blocks. The default store is written as
// block "main" and every valid profile as "profile_<key>". Each block holds
// the store's string, int32 and bool entries encoded by Encode; longs and
// floats are not backed up.
//
// # Staleness
//
// Every backup also produces an 8-byte state token holding the change
// timestamp (see MarkChanged). The next backup compares the stored token
// with the current timestamp and is skipped when they match.
//
//	res, err := agent.Backup(oldState, out, newState)
//
// # Corruption
//
// Decode never panics. It stops at the first unknown tag or truncated
// entry, keeps what it already read and reports the problem in its result.
// Corruption in one block does not affect the others.
package backup
