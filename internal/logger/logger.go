package logger

import (
	"os"

	"peerpay_settlement/internal/conf"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the root zap logger from the log configuration and installs
// it as the process-wide logger. When a filename is configured, output is
// rotated with lumberjack; otherwise it goes to stderr.
func NewLogger(cfg *conf.LogConfig) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var ws zapcore.WriteSyncer
	if cfg.Filename != "" {
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
		})
	} else {
		ws = zapcore.Lock(os.Stderr)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), ws, level)
	l := zap.New(core, zap.AddCaller())

	undo := zap.ReplaceGlobals(l)
	cleanup := func() {
		undo()
		_ = l.Sync()
	}

	return l, cleanup, nil
}
