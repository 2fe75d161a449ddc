package logger

import (
	"log"
	"os"

	"chainlist-rpcs/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates and configures a new zap logger based on the provided configuration.
// Entries go to stdout, or stderr when cfg.Output says so. When cfg.File is set they are also written, as JSON, to a rotated file.
func NewLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	logLevel := zap.NewAtomicLevel()
	if err := logLevel.UnmarshalText([]byte(cfg.Level)); err != nil {
		logLevel.SetLevel(zap.InfoLevel)
		log.Printf("Warning: Failed to parse log level '%s', defaulting to 'info'. Error: %v\n", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Encoding == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	out := os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(out), logLevel)
	if cfg.File != "" {
		core = zapcore.NewTee(core, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.AddSync(newRotatingWriter(cfg)),
			logLevel,
		))
	}

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	return logger, nil
}

func newRotatingWriter(cfg config.LoggerConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB, // MB
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays, // days
		Compress:   true,
	}
}
