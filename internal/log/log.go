// Package log provides centralized logging functionality using zap logger.
package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var sugar *zap.SugaredLogger
var baseLogger *zap.Logger

// Init initializes the package-level logger. Debug mode uses zap's development
// config (console encoder, debug level); otherwise the JSON production config is used.
func Init(debug bool) error {
	var zapLogger *zap.Logger
	var err error

	if debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zapLogger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	baseLogger = zapLogger
	sugar = zapLogger.Sugar()
	return nil
}

// InitWithFile is Init plus a JSON copy of every entry written to path,
// rotated at 50 MB with five compressed backups. An empty path is plain Init.
func InitWithFile(debug bool, path string) error {
	if err := Init(debug); err != nil {
		return err
	}
	if path == "" {
		return nil
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	}
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(rotator), level)

	baseLogger = baseLogger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	}))
	sugar = baseLogger.Sugar()
	return nil
}

// ensure installs a production logger when Init was never called, which is
// the case for tools and tests that use the package functions directly.
func ensure() {
	if sugar == nil {
		baseLogger, _ = zap.NewProduction(zap.AddCallerSkip(1))
		sugar = baseLogger.Sugar()
	}
}

// GetZapLogger returns the base zap logger
func GetZapLogger() *zap.Logger {
	ensure()
	return baseLogger
}

// GetSugaredLogger returns the sugared logger instance
func GetSugaredLogger() *zap.SugaredLogger {
	ensure()
	return sugar
}

// Named returns a sugared child logger tagged with the component name.
func Named(component string) *zap.SugaredLogger {
	ensure()
	return sugar.Named(component)
}

// Sync flushes any buffered log entries
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}

func Debug(args ...interface{}) {
	ensure()
	sugar.Debug(args...)
}

func Debugf(template string, args ...interface{}) {
	ensure()
	sugar.Debugf(template, args...)
}

func Debugw(msg string, keysAndValues ...interface{}) {
	ensure()
	sugar.Debugw(msg, keysAndValues...)
}

func Info(args ...interface{}) {
	ensure()
	sugar.Info(args...)
}

func Infof(template string, args ...interface{}) {
	ensure()
	sugar.Infof(template, args...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	ensure()
	sugar.Infow(msg, keysAndValues...)
}

func Warn(args ...interface{}) {
	ensure()
	sugar.Warn(args...)
}

func Warnf(template string, args ...interface{}) {
	ensure()
	sugar.Warnf(template, args...)
}

func Error(args ...interface{}) {
	ensure()
	sugar.Error(args...)
}

func Errorf(template string, args ...interface{}) {
	ensure()
	sugar.Errorf(template, args...)
}

func Errorw(msg string, keysAndValues ...interface{}) {
	ensure()
	sugar.Errorw(msg, keysAndValues...)
}

func Fatalf(template string, args ...interface{}) {
	ensure()
	sugar.Errorf(template, args...)
	Sync()
	os.Exit(1)
}
