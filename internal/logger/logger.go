package logger

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the root application logger. It is a no-op logger until Init is called,
// so packages may log safely from tests.
var Log = zap.NewNop().Sugar()

// Config represents configuration options for logger initialization
type Config struct {
	Debug bool // Enable debug logging
	JSON  bool // Emit JSON lines instead of the colored console format
}

// Init builds the root logger
func Init(config Config) error {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "timestamp",
		NameKey:        "logger",
		CallerKey:      "caller",
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     timeEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	level := zapcore.InfoLevel
	if config.Debug {
		level = zapcore.DebugLevel
	}

	var encoder zapcore.Encoder
	if config.JSON {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)
	Log = zap.New(core, zap.AddCaller()).Named("groupsync").Sugar()
	return nil
}

// Named returns a child logger ("http", "reminders", "notify", ...)
func Named(name string) *zap.SugaredLogger {
	return Log.Named(name)
}

// Sync flushes buffered log entries
func Sync() {
	if err := Log.Sync(); err != nil {
		// stdout sync returns EINVAL on some platforms
		fmt.Fprintf(os.Stderr, "logger sync: %v\n", err)
	}
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format("2006-01-02 15:04:05"))
}
