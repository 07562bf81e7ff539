package logging

import (
	"fmt"
	"strings"

	"github.com/Domenick1991/flightline/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field names shared across components.
const (
	FieldComponent  = "component"
	FieldRecordKind = "record_kind"
	FieldRecordID   = "record_id"
	FieldAircraftID = "aircraft_id"
	FieldActorID    = "actor_id"
	FieldTrade      = "trade"
)

// New builds the process logger from the log section of the config.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var zc zap.Config
	switch strings.ToLower(cfg.Format) {
	case "console":
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "json", "":
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}

// Component returns l (or a no-op logger when l is nil) tagged with name.
func Component(l *zap.Logger, name string) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return l.With(zap.String(FieldComponent, name))
}
