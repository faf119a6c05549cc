// Package logging provides the tree-conflict engine's logger: a nil-safe,
// prefix-chaining logger built on the standard library's log package, with
// a configurable verbosity level instead of a single debug on/off switch.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
)

// writer is an io.Writer that splits its input stream into lines and writes
// those lines to an underlying logger.
type writer struct {
	// callback is the logging callback.
	callback func(string)
	// buffer is any incomplete line fragment left over from a previous write.
	buffer []byte
}

// trimCarriageReturn trims any single trailing carriage return from the end of
// a byte slice.
func trimCarriageReturn(buffer []byte) []byte {
	if len(buffer) > 0 && buffer[len(buffer)-1] == '\r' {
		return buffer[:len(buffer)-1]
	}
	return buffer
}

// Write implements io.Writer.Write.
func (w *writer) Write(buffer []byte) (int, error) {
	w.buffer = append(w.buffer, buffer...)

	var processed int
	remaining := w.buffer
	for {
		index := bytes.IndexByte(remaining, '\n')
		if index == -1 {
			break
		}
		w.callback(string(trimCarriageReturn(remaining[:index])))
		processed += index + 1
		remaining = remaining[index+1:]
	}

	if processed > 0 {
		leftover := len(w.buffer) - processed
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}
		w.buffer = w.buffer[:leftover]
	}

	return len(buffer), nil
}

// Logger is the engine's logger type. It has the novel property that it
// still functions if nil, but doesn't log anything, so that a component
// constructed without a logger (e.g. in a unit test) needs no nil checks of
// its own. It uses the standard logger from the log package, so it respects
// whatever flags are set on that logger, and gates output by Level.
type Logger struct {
	prefix string
	level  Level
}

// RootLogger is the root logger from which all other loggers derive. Its
// level is read from the TREECONFLICT_LOG_LEVEL environment variable at
// startup (one of "disabled", "error", "warn", "info", "debug", "trace"),
// defaulting to LevelInfo.
var RootLogger = &Logger{level: levelFromEnvironment()}

func levelFromEnvironment() Level {
	if level, ok := NameToLevel(os.Getenv("TREECONFLICT_LOG_LEVEL")); ok {
		return level
	}
	return LevelInfo
}

// Sublogger creates a new sublogger with the specified name, inheriting the
// parent's level.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{prefix: prefix, level: l.level}
}

// WithLevel returns a copy of the logger at the specified level.
func (l *Logger) WithLevel(level Level) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{prefix: l.prefix, level: level}
}

func (l *Logger) enabled(level Level) bool {
	return l != nil && level != LevelDisabled && level <= l.level
}

// output is the internal logging method.
func (l *Logger) output(calldepth int, line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	log.Output(calldepth, line)
}

// Info logs information with semantics equivalent to fmt.Print, gated on
// LevelInfo.
func (l *Logger) Info(v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.output(3, fmt.Sprint(v...))
	}
}

// Infof logs information with semantics equivalent to fmt.Printf, gated on
// LevelInfo.
func (l *Logger) Infof(format string, v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Debug logs information with semantics equivalent to fmt.Print, gated on
// LevelDebug.
func (l *Logger) Debug(v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.output(3, fmt.Sprint(v...))
	}
}

// Debugf logs information with semantics equivalent to fmt.Printf, gated on
// LevelDebug.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// DebugWriter returns an io.Writer that writes lines at LevelDebug.
func (l *Logger) DebugWriter() io.Writer {
	if !l.enabled(LevelDebug) {
		return io.Discard
	}
	return &writer{callback: func(s string) { l.output(4, s) }}
}

// Warn logs error information with a warning prefix and yellow color, gated
// on LevelWarn.
func (l *Logger) Warn(err error) {
	if l.enabled(LevelWarn) {
		l.output(3, color.YellowString("warning: %v", err))
	}
}

// Error logs error information with an error prefix and red color, gated on
// LevelError.
func (l *Logger) Error(err error) {
	if l.enabled(LevelError) {
		l.output(3, color.RedString("error: %v", err))
	}
}
