package observability

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/helpdesk/internal/config"
)

// NewLogger builds the process logger. LOG_FORMAT=console gives a colored human-readable
// encoder for local work; everything else ships JSON with sampling.
func NewLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "ts",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	switch format := strings.ToLower(cfg.Format); format {
	case "", "json":
		zapCfg.Encoding = "json"
		zapCfg.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	case "console":
		zapCfg.Encoding = "console"
		zapCfg.Development = true
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unsupported LOG_FORMAT %q", cfg.Format)
	}

	var opts []zap.Option
	if cfg.Service != "" {
		opts = append(opts, zap.Fields(zap.String("service", cfg.Service)))
	}
	return zapCfg.Build(opts...)
}
