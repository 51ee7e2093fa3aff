package utils

import (
	"github.com/fathima-sithara/music-share/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the sugared logger used across both binaries. When
// log.file is set the output is also written to a rotating file.
func NewLogger(dev bool, lc config.LogConf) (*zap.SugaredLogger, error) {
	var zc zap.Config
	if dev {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	z, err := zc.Build()
	if err != nil {
		return nil, err
	}
	if lc.File == "" {
		return z.Sugar(), nil
	}

	rotating := zapcore.AddSync(&lumberjack.Logger{
		Filename:   lc.File,
		MaxSize:    lc.MaxSizeMB,
		MaxBackups: lc.MaxBackups,
		MaxAge:     lc.MaxAgeDays,
		Compress:   true,
	})
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), rotating, zc.Level)
	z = z.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	}))
	return z.Sugar(), nil
}

// NewNopLogger is handy for tests that do not care about output.
func NewNopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
