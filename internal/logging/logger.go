package logging

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelEnvVar names the variable consulted when no level is configured.
const LogLevelEnvVar = "NFCPROFILE_LOG_LEVEL"

// dumpLimit caps how many payload bytes end up in a single log line.
const dumpLimit = 256

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(zap.NewNop())
}

// Initialize installs the process logger. An empty level falls back to
// NFCPROFILE_LOG_LEVEL; when both are empty the logger stays silent.
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if level == "" {
		current.Store(zap.NewNop())
		return nil
	}

	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	current.Store(New(zapcore.Lock(os.Stderr), lvl))
	return nil
}

// New builds a console logger writing entries at lvl and above to w.
func New(w zapcore.WriteSyncer, lvl zapcore.Level) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), w, lvl)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.ErrorOutput(zapcore.Lock(os.Stderr)))
}

// Replace swaps the process logger and returns a func that puts the previous
// one back. Tests use it with an observer core.
func Replace(l *zap.Logger) (undo func()) {
	if l == nil {
		l = zap.NewNop()
	}
	prev := current.Swap(l)
	return func() { current.Store(prev) }
}

// GetLogger returns the process logger. It is never nil.
func GetLogger() *zap.Logger {
	return current.Load()
}

func Info(msg string, fields ...zap.Field)  { GetLogger().Info(msg, fields...) }
func Debug(msg string, fields ...zap.Field) { GetLogger().Debug(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { GetLogger().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { GetLogger().Error(msg, fields...) }

// Fatal logs and exits the process.
func Fatal(msg string, fields ...zap.Field) { GetLogger().Fatal(msg, fields...) }

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func Sync() {
	_ = GetLogger().Sync()
}

// LogPropertyChange records one system property write made by a setting.
func LogPropertyChange(setting, property string, from, to any) {
	Info("System property changed",
		zap.String("setting", setting),
		zap.String("property", property),
		zap.Any("from", from),
		zap.Any("to", to),
	)
}

// LogTransition records a profile being applied or restored.
func LogTransition(key, action string, elapsed time.Duration) {
	Info("Profile transition",
		zap.String("profile", key),
		zap.String("action", action),
		zap.Duration("elapsed", elapsed),
	)
}

// LogBackupBlock records one block crossing a backup stream.
func LogBackupBlock(direction, name string, size int) {
	Debug("Backup block",
		zap.String("direction", direction),
		zap.String("block", name),
		zap.Int("size", size),
	)
}

func LogConnection(remoteAddr string, event string) {
	Info("Connection event",
		zap.String("remote_addr", remoteAddr),
		zap.String("event", event),
	)
}

// LogWebSocketMessage records a frame on the bridge. Text frames carry their
// content, binary frames a clipped hex dump.
func LogWebSocketMessage(remoteAddr string, direction string, messageType int, data []byte) {
	fields := []zap.Field{
		zap.String("remote_addr", remoteAddr),
		zap.String("direction", direction),
		zap.String("message_type", frameKind(messageType)),
		zap.Int("length", len(data)),
	}
	switch messageType {
	case websocket.TextMessage:
		fields = append(fields, zap.String("content", string(data)))
	case websocket.BinaryMessage:
		fields = append(fields, zap.String("hex_dump", hexDump(data)))
	}
	Debug("WebSocket message", fields...)
}

// LogRawBytes dumps bytes as hex and printable ASCII at debug level.
func LogRawBytes(label string, data []byte) {
	Debug(label,
		zap.Int("length", len(data)),
		zap.String("hex", hexDump(data)),
		zap.String("ascii", asciiDump(data)),
	)
}

func frameKind(messageType int) string {
	switch messageType {
	case websocket.TextMessage:
		return "text"
	case websocket.BinaryMessage:
		return "binary"
	case websocket.CloseMessage:
		return "close"
	case websocket.PingMessage:
		return "ping"
	case websocket.PongMessage:
		return "pong"
	}
	return fmt.Sprintf("unknown(%d)", messageType)
}

func clip(data []byte) ([]byte, bool) {
	if len(data) > dumpLimit {
		return data[:dumpLimit], true
	}
	return data, false
}

func hexDump(data []byte) string {
	head, clipped := clip(data)
	s := hex.EncodeToString(head)
	if clipped {
		s += "..."
	}
	return s
}

func asciiDump(data []byte) string {
	head, _ := clip(data)
	out := make([]byte, len(head))
	for i, b := range head {
		if b < ' ' || b > '~' {
			b = '.'
		}
		out[i] = b
	}
	return string(out)
}
