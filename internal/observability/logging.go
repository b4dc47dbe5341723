package observability

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions configures where component logs go.
type LogOptions struct {
	File       string // rotated log file; empty disables file logging
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Verbose    bool // also write to stderr
}

// Logs hands out prefixed loggers that share one destination.
type Logs struct {
	out    io.Writer
	closer io.Closer
}

// OpenLogs builds the shared destination. Without a file or Verbose, logs are discarded.
func OpenLogs(opts LogOptions, stderr io.Writer) *Logs {
	if stderr == nil {
		stderr = os.Stderr
	}

	var writers []io.Writer
	l := &Logs{}
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
			Compress:   true,
		}
		writers = append(writers, rotator)
		l.closer = rotator
	}
	if opts.Verbose {
		writers = append(writers, stderr)
	}

	switch len(writers) {
	case 0:
		l.out = io.Discard
	case 1:
		l.out = writers[0]
	default:
		l.out = io.MultiWriter(writers...)
	}
	return l
}

// Logger returns a logger whose lines start with "[component] ".
func (l *Logs) Logger(component string) *log.Logger {
	return log.New(l.out, "["+component+"] ", log.LstdFlags)
}

// Close flushes and closes the log file, if any.
func (l *Logs) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func orDefault(v, d int) int {
	if v > 0 {
		return v
	}
	return d
}
