// Package logging wires log/slog into the device.Logger capability,
// following the teacher's cmd/tidskott-pi/app/logger.go shape (a text
// handler over stdout plus a file), upgraded to rotate the file sink via
// lumberjack since this controller is meant to run unattended for long
// uptimes on embedded hardware rather than for the length of one
// recording session (see DESIGN.md).
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/doorkeeper/petdoor/internal/device"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the rotating file sink. A zero value disables file
// logging and writes only to stdout.
type Options struct {
	FilePath   string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
}

// SlogLogger adapts *slog.Logger to device.Logger, composing namespaces
// via With, matching the teacher's logger.With("component", ...) idiom.
type SlogLogger struct {
	logger *slog.Logger
}

// New builds the root SlogLogger. When opts.FilePath is set, logs are
// written to both stdout and a rotating file; otherwise stdout only.
func New(opts Options) *SlogLogger {
	var w io.Writer = os.Stdout
	if opts.FilePath != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    nonZero(opts.MaxSizeMB, 10),
			MaxAge:     nonZero(opts.MaxAgeDays, 28),
			MaxBackups: nonZero(opts.MaxBackups, 5),
			Compress:   true,
		})
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &SlogLogger{logger: slog.New(handler)}
}

func nonZero(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func (l *SlogLogger) Debug(msg string, kv ...any) { l.logger.Debug(msg, kv...) }
func (l *SlogLogger) Info(msg string, kv ...any)  { l.logger.Info(msg, kv...) }
func (l *SlogLogger) Warn(msg string, kv ...any)  { l.logger.Warn(msg, kv...) }
func (l *SlogLogger) Error(msg string, kv ...any) { l.logger.Error(msg, kv...) }

func (l *SlogLogger) With(component string) device.Logger {
	return &SlogLogger{logger: l.logger.With("component", component)}
}

var _ device.Logger = (*SlogLogger)(nil)
