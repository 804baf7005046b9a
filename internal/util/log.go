package util

import (
	"fmt"
	"io"
	"os"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	currentLogLevel           = LevelInfo
	useColors                 = IsTerminal(os.Stderr.Fd())
	logOutput       io.Writer = os.Stderr
)

// SetLogLevel sets the minimum log level to display
func SetLogLevel(level LogLevel) {
	currentLogLevel = level
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		currentLogLevel = LevelDebug
	}
}

// SetQuiet enables quiet mode (errors only)
func SetQuiet(quiet bool) {
	if quiet {
		currentLogLevel = LevelError
	}
}

// IsQuiet reports whether only errors are displayed
func IsQuiet() bool {
	return currentLogLevel >= LevelError
}

// SetColors enables or disables colored output
func SetColors(enabled bool) {
	useColors = enabled
}

// SetLogOutput redirects log lines, returning the previous writer
func SetLogOutput(w io.Writer) io.Writer {
	prev := logOutput
	logOutput = w
	return prev
}

func colorize(color string, text string) string {
	if !useColors {
		return text
	}
	reset := "\033[0m"
	return color + text + reset
}

func logLine(level LogLevel, color, tag, format string, args []interface{}) {
	if currentLogLevel > level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(logOutput, "%s %s %s\n", colorize(color, timestamp()), tag, msg)
}

// DebugLog logs debug messages
func DebugLog(format string, args ...interface{}) {
	logLine(LevelDebug, "\033[90m", "[DEBUG]", format, args)
}

// InfoLog logs informational messages
func InfoLog(format string, args ...interface{}) {
	logLine(LevelInfo, "\033[36m", "[INFO] ", format, args)
}

// WarnLog logs warning messages
func WarnLog(format string, args ...interface{}) {
	logLine(LevelWarn, "\033[33m", "[WARN] ", format, args)
}

// ErrorLog logs error messages
func ErrorLog(format string, args ...interface{}) {
	logLine(LevelError, "\033[31m", "[ERROR]", format, args)
}

// SuccessLog logs success messages (always shown unless quiet)
func SuccessLog(format string, args ...interface{}) {
	logLine(LevelInfo, "\033[32m", "[OK]   ", format, args)
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}
