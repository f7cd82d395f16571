package internal

import (
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logLevel  = LogLevelInfo
	atomLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	outputMu   sync.Mutex
	jsonOutput bool
	logger     = func() *atomic.Pointer[zap.SugaredLogger] {
		p := new(atomic.Pointer[zap.SugaredLogger])
		p.Store(newLogger(false))
		return p
	}()
)

func newLogger(json bool) *zap.SugaredLogger {
	var encoder zapcore.Encoder
	if json {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeCaller = nil
		encoder = zapcore.NewConsoleEncoder(cfg)
	}
	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), atomLevel)
	return zap.New(core).Sugar()
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logLevel = level
	switch level {
	case LogLevelError:
		atomLevel.SetLevel(zapcore.ErrorLevel)
	case LogLevelWarn:
		atomLevel.SetLevel(zapcore.WarnLevel)
	case LogLevelInfo:
		atomLevel.SetLevel(zapcore.InfoLevel)
	default:
		atomLevel.SetLevel(zapcore.DebugLevel)
	}
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// SetJSONOutput switches between the console encoder and JSON lines.
// Safe to call while other goroutines are logging.
func SetJSONOutput(enabled bool) {
	outputMu.Lock()
	defer outputMu.Unlock()
	if enabled == jsonOutput {
		return
	}
	jsonOutput = enabled
	old := logger.Swap(newLogger(enabled))
	_ = old.Sync()
}

// Logger returns the structured logger for callers that want key/value fields.
func Logger() *zap.SugaredLogger {
	return logger.Load()
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	Logger().Errorf(format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	Logger().Warnf(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	Logger().Infof(format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	Logger().Debugf(format, args...)
}
