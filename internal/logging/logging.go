// Package logging defines the Logger interface every other package in
// this module depends on, keeping them free of a direct zap import. The
// cmd/ entrypoints construct the real zap-backed implementation, the same
// boundary pdfcpu's internal/zap4echo bridges a *zap.Logger into echo's
// logger interface at.
package logging

import "go.uber.org/zap"

// Logger is the minimal leveled logging contract used throughout
// pdftopdf/pwgtopdf/ipp/layout/color. It intentionally mirrors pdfcpu's
// pkg/log.Logger shape (Printf-style, one method per level) rather than
// zap's structured field API, so library code never has to thread zap
// field values through unrelated signatures.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Discard is a Logger that drops everything, used as the default when a
// caller doesn't supply one (spec's "IPPTRANSFORM_DEBUG unset" case).
var Discard Logger = discard{}

type discard struct{}

func (discard) Debugf(string, ...interface{}) {}
func (discard) Infof(string, ...interface{})  {}
func (discard) Warnf(string, ...interface{})  {}
func (discard) Errorf(string, ...interface{}) {}

// ZapLogger adapts a *zap.SugaredLogger to Logger.
type ZapLogger struct {
	S *zap.SugaredLogger
}

// NewZap builds a ZapLogger from a configured *zap.Logger.
func NewZap(l *zap.Logger) *ZapLogger {
	return &ZapLogger{S: l.Sugar()}
}

func (z *ZapLogger) Debugf(format string, args ...interface{}) { z.S.Debugf(format, args...) }
func (z *ZapLogger) Infof(format string, args ...interface{})  { z.S.Infof(format, args...) }
func (z *ZapLogger) Warnf(format string, args ...interface{})  { z.S.Warnf(format, args...) }
func (z *ZapLogger) Errorf(format string, args ...interface{}) { z.S.Errorf(format, args...) }
