package sapling

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a console logger writing to stderr at the given level.
// Scenes log body lifecycle and step statistics at debug level.
func NewLogger(level zapcore.Level) (*zap.Logger, error) {
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      level == zapcore.DebugLevel,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	return config.Build()
}

// NewDevelopmentLogger is NewLogger at debug level. It panics if the logger
// cannot be built.
func NewDevelopmentLogger() *zap.Logger {
	logger, err := NewLogger(zapcore.DebugLevel)
	if err != nil {
		panic(err)
	}
	return logger
}
