// Package xhlog provides structured logging for xgohook using zap.
package xhlog

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with hook-domain helpers.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

var (
	// L is the global logger instance, set by Init.
	L    *Logger
	once sync.Once
)

// Init initializes the global logger at the given debug level.
// Safe to call multiple times; only the first call takes effect.
func Init(debug bool) {
	once.Do(func() {
		L = New(debug)
	})
}

// New creates a new Logger instance.
func New(debug bool) *Logger {
	level := zap.NewAtomicLevelAt(zap.WarnLevel)
	if debug {
		level.SetLevel(zap.DebugLevel)
	}

	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = level

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		logger = zap.NewNop()
	}

	return &Logger{Logger: logger, level: level}
}

// NewNop creates a no-op logger, used as the default before Init and in tests.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop(), level: zap.NewAtomicLevel()}
}

// SetLevel switches between debug and warn verbosity. Uses the logger's
// AtomicLevel directly rather than zap.IncreaseLevel, which can only raise
// the threshold and so could never turn debug logging back on once lowered.
// Backing implementation for xhook.SetDebug.
func (l *Logger) SetLevel(debug bool) {
	if debug {
		l.level.SetLevel(zap.DebugLevel)
	} else {
		l.level.SetLevel(zap.WarnLevel)
	}
}

// Refresh logs the outcome of one reconciler sweep.
func (l *Logger) Refresh(refreshID string, matched, patched, unloaded int) {
	l.Info("map refreshed",
		zap.String("refresh_id", refreshID),
		zap.Int("matched", matched),
		zap.Int("patched", patched),
		zap.Int("unloaded", unloaded),
	)
}

// Patch logs a single successful slot patch.
func (l *Logger) Patch(refreshID, pathname, symbol string, oldVal, newVal uintptr) {
	l.Debug("patched",
		zap.String("refresh_id", refreshID),
		zap.String("pathname", pathname),
		zap.String("symbol", symbol),
		zap.String("old", Hex(uint64(oldVal))),
		zap.String("new", Hex(uint64(newVal))),
	)
}

// SkipObject logs why a candidate mapping was skipped before patching.
func (l *Logger) SkipObject(refreshID, pathname, reason string) {
	l.Debug("skipped",
		zap.String("refresh_id", refreshID),
		zap.String("pathname", pathname),
		zap.String("reason", reason),
	)
}

// ProbeFault logs a recovered fault from inside an ELF reader probe.
func (l *Logger) ProbeFault(refreshID, pathname string, err error) {
	l.Warn("probe fault",
		zap.String("refresh_id", refreshID),
		zap.String("pathname", pathname),
		zap.Error(err),
	)
}

// Hex formats a uint64 as a 0x-prefixed hex string for logging.
func Hex(v uint64) string {
	return "0x" + hexString(v)
}

func hexString(v uint64) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	buf := make([]byte, 16)
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}
