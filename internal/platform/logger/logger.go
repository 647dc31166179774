package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	DebugLogger *log.Logger
	InfoLogger  *log.Logger
	WarnLogger  *log.Logger
	ErrorLogger *log.Logger

	threshold atomic.Int32
)

const flags = log.Ldate | log.Ltime | log.Lshortfile

// callDepth skips the helper frame so Lshortfile points at the caller.
const callDepth = 3

func init() {
	DebugLogger = log.New(os.Stdout, "DEBUG: ", flags)
	InfoLogger = log.New(os.Stdout, "INFO: ", flags)
	WarnLogger = log.New(os.Stdout, "WARN: ", flags)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", flags)
	SetLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
}

// ParseLevel maps debug|info|warn|error to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func SetLevel(l Level) {
	threshold.Store(int32(l))
}

// SetOutput redirects every level to w. Tests use it to capture output.
func SetOutput(w io.Writer) {
	DebugLogger.SetOutput(w)
	InfoLogger.SetOutput(w)
	WarnLogger.SetOutput(w)
	ErrorLogger.SetOutput(w)
}

func enabled(l Level) bool {
	return int32(l) >= threshold.Load()
}

func Debug(msg string, v ...interface{}) {
	if enabled(LevelDebug) {
		DebugLogger.Output(callDepth, format(msg, v...))
	}
}

func Info(msg string, v ...interface{}) {
	if enabled(LevelInfo) {
		InfoLogger.Output(callDepth, format(msg, v...))
	}
}

func Warn(msg string, v ...interface{}) {
	if enabled(LevelWarn) {
		WarnLogger.Output(callDepth, format(msg, v...))
	}
}

// Error logs msg with err appended. Extra values are printed as key=value context.
func Error(msg string, err error, v ...interface{}) {
	if !enabled(LevelError) {
		return
	}
	line := format(msg, v...)
	if err != nil {
		line += ": " + err.Error()
	}
	ErrorLogger.Output(callDepth, line)
}

func format(msg string, v ...interface{}) string {
	if len(v) == 0 {
		return msg
	}
	if strings.Contains(msg, "%") {
		return fmt.Sprintf(msg, v...)
	}
	var b strings.Builder
	b.WriteString(msg)
	for _, x := range v {
		switch ctx := x.(type) {
		case nil:
			continue
		case map[string]interface{}:
			for k, val := range ctx {
				fmt.Fprintf(&b, " %s=%v", k, val)
			}
		default:
			fmt.Fprintf(&b, " %v", ctx)
		}
	}
	return b.String()
}
