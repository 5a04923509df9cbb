// Package logging provides the leveled, colored logger used on stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel accepts debug, info, warn or error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger writes prefixed, optionally colored lines. A nil *Logger discards
// everything, so components can take one without checking.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level

	debug *color.Color
	info  *color.Color
	warn  *color.Color
	err   *color.Color
}

// New creates a logger writing to out. Color is enabled only when out is a
// terminal.
func New(out io.Writer, level Level) *Logger {
	l := &Logger{
		out:   out,
		level: level,
		debug: color.New(color.Faint),
		info:  color.New(color.FgCyan),
		warn:  color.New(color.FgYellow, color.Bold),
		err:   color.New(color.FgRed, color.Bold),
	}
	l.SetColor(isTerminal(out))
	return l
}

// Default returns an info level logger on stderr.
func Default() *Logger {
	return New(os.Stderr, LevelInfo)
}

// SetColor forces color on or off.
func (l *Logger) SetColor(enabled bool) {
	if l == nil {
		return
	}
	for _, c := range []*color.Color{l.debug, l.info, l.warn, l.err} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.logf(LevelDebug, "DEBUG", format, args...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.logf(LevelInfo, "INFO", format, args...)
}

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	l.logf(LevelWarn, "WARN", format, args...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.logf(LevelError, "ERROR", format, args...)
}

func (l *Logger) logf(level Level, prefix, format string, args ...any) {
	if l == nil || level < l.level {
		return
	}

	var c *color.Color
	switch level {
	case LevelDebug:
		c = l.debug
	case LevelInfo:
		c = l.info
	case LevelWarn:
		c = l.warn
	default:
		c = l.err
	}

	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")

	l.mu.Lock()
	defer l.mu.Unlock()
	c.Fprintf(l.out, "%-5s ", prefix)
	fmt.Fprintln(l.out, msg)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
