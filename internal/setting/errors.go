package setting

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a setting failure
type ErrorType int

const (
	// ErrTypeAccessor indicates a system property could not be read or written
	ErrTypeAccessor ErrorType = iota
	// ErrTypeSnapshot indicates the snapshot store rejected a commit
	ErrTypeSnapshot
	// ErrTypeMalformed indicates a desired value that does not parse
	ErrTypeMalformed
	// ErrTypeUnknownValue indicates a desired value outside the setting's domain
	ErrTypeUnknownValue
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeAccessor:
		return "Accessor Error"
	case ErrTypeSnapshot:
		return "Snapshot Error"
	case ErrTypeMalformed:
		return "Malformed Value"
	case ErrTypeUnknownValue:
		return "Unknown Value"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// SettingError describes a failure of one setting.
type SettingError struct {
	Type     ErrorType
	Setting  string // setting name
	Property string // system property or preference key involved
	Err      error
}

// Error implements the error interface
func (e *SettingError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Setting)
	if e.Property != "" {
		msg += " (" + e.Property + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *SettingError) Unwrap() error {
	return e.Err
}

func newAccessorError(setting, property string, err error) *SettingError {
	return &SettingError{Type: ErrTypeAccessor, Setting: setting, Property: property, Err: err}
}

func newSnapshotError(setting string, err error) *SettingError {
	return &SettingError{Type: ErrTypeSnapshot, Setting: setting, Err: err}
}

func newMalformedError(setting, raw string, err error) *SettingError {
	return &SettingError{Type: ErrTypeMalformed, Setting: setting, Property: raw, Err: err}
}

func newUnknownValueError(setting, raw string) *SettingError {
	return &SettingError{Type: ErrTypeUnknownValue, Setting: setting, Property: raw}
}

func isType(err error, t ErrorType) bool {
	var se *SettingError
	if errors.As(err, &se) {
		return se.Type == t
	}
	return false
}

// IsAccessorError checks if an error is a property read/write failure
func IsAccessorError(err error) bool {
	return isType(err, ErrTypeAccessor)
}

// IsSnapshotError checks if an error is a snapshot commit failure
func IsSnapshotError(err error) bool {
	return isType(err, ErrTypeSnapshot)
}

// IsInvalidValueError checks if an error rejects a desired value
func IsInvalidValueError(err error) bool {
	return isType(err, ErrTypeMalformed) || isType(err, ErrTypeUnknownValue)
}
