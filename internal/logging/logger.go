package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field keys shared by every component so compile logs can be joined on them.
const (
	KeyRequestID  = "request_id"
	KeyScenarioID = "scenario_id"
	KeyMap        = "map"
)

// Logger wraps zap.Logger with compiler-scoped helpers.
type Logger struct {
	*zap.Logger
}

// Config defines logger configuration.
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Development bool
	OutputPaths []string
}

// DefaultConfig returns the JSON configuration used by the server.
func DefaultConfig() Config {
	return Config{Level: "info", OutputPaths: []string{"stderr"}}
}

// DevelopmentConfig returns a console configuration at debug level.
func DevelopmentConfig() Config {
	return Config{Level: "debug", Development: true, OutputPaths: []string{"stderr"}}
}

// New builds a logger from cfg.
func New(cfg Config) (*Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.EncoderConfig = encoderConfig(cfg.Development)
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig = encoderConfig(true)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.Sampling = nil
	if len(cfg.OutputPaths) > 0 {
		zapCfg.OutputPaths = cfg.OutputPaths
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: logger}, nil
}

// NewDefault builds a logger from DefaultConfig, or a no-op logger if the
// output cannot be opened.
func NewDefault() *Logger {
	logger, err := New(DefaultConfig())
	if err != nil {
		return NewNop()
	}
	return logger
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// FromConfig builds a logger for level and mode. An invalid level falls back
// to the default logger and is reported on it.
func FromConfig(level string, development bool) *Logger {
	cfg := DefaultConfig()
	if development {
		cfg = DevelopmentConfig()
	}
	if level != "" {
		cfg.Level = level
	}

	logger, err := New(cfg)
	if err != nil {
		fallback := NewDefault()
		fallback.Warn("Invalid log level, using default", zap.String("level", level), zap.Error(err))
		return fallback
	}
	return logger
}

// Named returns a child logger for a component.
func (l *Logger) Named(component string) *Logger {
	return &Logger{Logger: l.Logger.Named(component)}
}

// Request returns a child logger tagged with a request id. An empty id
// returns l unchanged.
func (l *Logger) Request(id string) *Logger {
	if id == "" {
		return l
	}
	return &Logger{Logger: l.With(zap.String(KeyRequestID, id))}
}

// Scenario returns a child logger tagged with a scenario id and, when known,
// the map it was compiled against.
func (l *Logger) Scenario(id, mapKey string) *Logger {
	fields := []zap.Field{zap.String(KeyScenarioID, id)}
	if mapKey != "" {
		fields = append(fields, zap.String(KeyMap, mapKey))
	}
	return &Logger{Logger: l.With(fields...)}
}

func encoderConfig(development bool) zapcore.EncoderConfig {
	if development {
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return enc
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.MessageKey = "message"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeDuration = zapcore.SecondsDurationEncoder
	return enc
}
