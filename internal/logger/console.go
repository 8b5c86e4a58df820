// Package logger provides the leveled console logger for cadence runs. All
// output carries [HH:MM:SS] timestamps; color is enabled automatically when
// writing to a TTY and disabled otherwise (NO_COLOR is respected via the
// color library).
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

// ConsoleLogger writes timestamped, level-filtered messages to a writer.
// Safe for concurrent use.
type ConsoleLogger struct {
	writer   io.Writer
	level    int
	useColor bool
	mu       sync.Mutex
}

// NewConsoleLogger creates a ConsoleLogger writing to w. Valid levels are
// debug, info, warn, error (case-insensitive); anything else defaults to
// info. A nil writer discards all output.
func NewConsoleLogger(w io.Writer, level string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:   w,
		level:    parseLevel(level),
		useColor: isTerminal(w),
	}
}

func parseLevel(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// isTerminal reports whether w is a TTY that supports color.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.log(levelDebug, "DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.log(levelInfo, "INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.log(levelWarn, "WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.log(levelError, "ERROR", message)
}

func (cl *ConsoleLogger) log(level int, tag, message string) {
	if cl.writer == nil || level < cl.level {
		return
	}

	if cl.useColor {
		switch level {
		case levelWarn:
			tag = color.New(color.FgYellow).Sprint(tag)
		case levelError:
			tag = color.New(color.FgRed).Sprint(tag)
		case levelDebug:
			tag = color.New(color.FgCyan).Sprint(tag)
		}
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", time.Now().Format("15:04:05"), tag, message)
}
