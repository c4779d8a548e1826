package utils

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileMaxSizeMegabytes = 10
	logFileMaxBackups       = 3
	logFileMaxAgeDays       = 7
)

// LoggerOptions controls the application logger.
type LoggerOptions struct {
	Level   string
	LogFile string
}

// NewApplicationLogger constructs a zap logger configured for human-readable console output.
func NewApplicationLogger() (*zap.Logger, error) {
	return NewConfiguredLogger(LoggerOptions{})
}

// NewConfiguredLogger builds the console logger at the requested level and, when LogFile is set,
// tees JSON entries into a rotating log file.
func NewConfiguredLogger(options LoggerOptions) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if options.Level != "" {
		if parseError := level.UnmarshalText([]byte(options.Level)); parseError != nil {
			return nil, fmt.Errorf(invalidLogLevelFormat, options.Level, parseError)
		}
	}

	consoleEncoderConfig := zap.NewProductionEncoderConfig()
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleEncoderConfig.TimeKey = ""
	consoleEncoderConfig.NameKey = ""
	consoleEncoderConfig.CallerKey = ""
	consoleEncoderConfig.MessageKey = "message"
	consoleEncoderConfig.StacktraceKey = ""
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)

	if options.LogFile == "" {
		return zap.New(consoleCore), nil
	}

	fileWriter := &lumberjack.Logger{
		Filename:   options.LogFile,
		MaxSize:    logFileMaxSizeMegabytes,
		MaxBackups: logFileMaxBackups,
		MaxAge:     logFileMaxAgeDays,
	}
	fileEncoderConfig := zap.NewProductionEncoderConfig()
	fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(fileEncoderConfig),
		zapcore.AddSync(fileWriter),
		level,
	)
	return zap.New(zapcore.NewTee(consoleCore, fileCore)), nil
}
