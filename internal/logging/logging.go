// Package logging builds the slog logger used across the service.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Params controls where and how verbosely the service logs.
type Params struct {
	Level      string
	File       string
	ToStdout   bool
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New returns a text logger writing to stdout, to a rotating file, or both.
// With no file configured it always writes to stdout.
func New(p Params) *slog.Logger {
	return slog.New(slog.NewTextHandler(Writer(p), &slog.HandlerOptions{Level: ParseLevel(p.Level)}))
}

// Writer returns the destination for log output.
func Writer(p Params) io.Writer {
	if p.File == "" {
		return os.Stdout
	}
	file := p.File
	if !strings.HasSuffix(file, ".log") {
		file += ".log"
	}
	lj := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    p.MaxSizeMB,
		MaxBackups: p.MaxBackups,
		MaxAge:     p.MaxAgeDays,
		LocalTime:  false,
		Compress:   p.Compress,
	}
	if p.ToStdout {
		return io.MultiWriter(os.Stdout, lj)
	}
	return lj
}

// ParseLevel maps a config string to a slog level. Unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
