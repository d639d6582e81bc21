// Package logging is a thin leveled layer over the standard library logger.
//
// All importer output goes through the stdlib log package (timestamped lines on
// stderr); this package only adds a level prefix and a process-wide threshold
// so that -v can turn on DEBUG lines without touching call sites.
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync/atomic"
)

// Level orders log severities; smaller is more verbose.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("Level(%d)", int32(l))
	}
}

var threshold atomic.Int32

func init() { threshold.Store(int32(LevelInfo)) }

// ParseLevel maps "debug", "info", "warn" and "error" (any case) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO", "":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// SetLevel sets the process-wide threshold.
func SetLevel(l Level) { threshold.Store(int32(l)) }

// CurrentLevel reports the process-wide threshold.
func CurrentLevel() Level { return Level(threshold.Load()) }

// SetOutput redirects the underlying stdlib logger.
func SetOutput(w io.Writer) { log.SetOutput(w) }

// Enabled reports whether messages at l are emitted.
func Enabled(l Level) bool { return l >= CurrentLevel() }

func logf(l Level, format string, v ...any) {
	if !Enabled(l) {
		return
	}
	log.Printf("["+l.String()+"] "+format, v...)
}

func Debugf(format string, v ...any) { logf(LevelDebug, format, v...) }
func Infof(format string, v ...any)  { logf(LevelInfo, format, v...) }
func Warnf(format string, v ...any)  { logf(LevelWarn, format, v...) }
func Errorf(format string, v ...any) { logf(LevelError, format, v...) }
