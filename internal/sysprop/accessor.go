package sysprop

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a property has no value.
var ErrNotFound = errors.New("system property not found")

// Property names.
const (
	AirplaneModeOn       = "airplane_mode_on"
	AirplaneModeRadios   = "airplane_mode_radios"
	ScreenOffTimeout     = "screen_off_timeout"
	ScreenBrightness     = "screen_brightness"
	ScreenBrightnessMode = "screen_brightness_mode"
	RingerMode           = "ringer_mode"
)

// VibrateSetting returns the property name for a vibrate channel.
func VibrateSetting(channel int) string {
	return fmt.Sprintf("vibrate_setting_%d", channel)
}

// RadioNFC is the token for the NFC radio in the airplane radios list.
const RadioNFC = "nfc"

// Brightness modes.
const (
	BrightnessModeManual    = 0
	BrightnessModeAutomatic = 1
)

// Ringer modes.
const (
	RingerModeSilent  = 0
	RingerModeVibrate = 1
	RingerModeNormal  = 2
)

// Vibrate channels and their values.
const (
	VibrateTypeRinger       = 0
	VibrateTypeNotification = 1

	VibrateOff        = 0
	VibrateOn         = 1
	VibrateOnlySilent = 2
)

// Broadcast events.
const (
	EventAirplaneModeChanged = "airplane_mode_changed"
	EventFeedback            = "feedback"
)

// Accessor reads and writes system properties.
type Accessor interface {
	GetInt(name string) (int, error)
	GetString(name string) (string, error)
	PutInt(name string, value int) error
	PutString(name string, value string) error
	Broadcast(event string, payload map[string]any) error
}

// Event is a recorded broadcast.
type Event struct {
	Name    string         `yaml:"name"`
	Payload map[string]any `yaml:"payload,omitempty"`
}
