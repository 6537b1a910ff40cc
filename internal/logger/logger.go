// Package logger provides leveled logging for pathstore.
//
// Output format (text or json) and destination (stdout, stderr, or a file)
// are configurable via Configure. The zero configuration logs text at INFO
// to stdout.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	currentLevel  = LevelInfo
	currentFormat = "text"
	logger        = stdlog.New(os.Stdout, "", 0)
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
		return "UNKNOWN"
	}
}

func SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		currentLevel = LevelDebug
	case "INFO":
		currentLevel = LevelInfo
	case "WARN":
		currentLevel = LevelWarn
	case "ERROR":
		currentLevel = LevelError
	}
}

// SetFormat selects the output format: "text" or "json".
func SetFormat(format string) {
	switch strings.ToLower(format) {
	case "text", "json":
		currentFormat = strings.ToLower(format)
	}
}

// SetOutput redirects log output. Accepts "stdout", "stderr", or a file
// path. Files are opened in append mode and created if missing.
func SetOutput(output string) error {
	var w io.Writer
	switch output {
	case "", "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", output, err)
		}
		w = f
	}
	logger = stdlog.New(w, "", 0)
	return nil
}

// Configure applies level, format, and output in one call.
func Configure(level, format, output string) error {
	SetLevel(level)
	SetFormat(format)
	return SetOutput(output)
}

func log(level Level, format string, v ...any) {
	if level < currentLevel {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, v...)

	if currentFormat == "json" {
		line, err := json.Marshal(map[string]string{
			"time":    timestamp,
			"level":   level.String(),
			"message": message,
		})
		if err == nil {
			logger.Println(string(line))
			return
		}
		// fall through to text on marshal failure
	}

	logger.Println(fmt.Sprintf("[%s] [%s] ", timestamp, level.String()) + message)
}

func Debug(format string, v ...any) {
	log(LevelDebug, format, v...)
}

func Info(format string, v ...any) {
	log(LevelInfo, format, v...)
}

func Warn(format string, v ...any) {
	log(LevelWarn, format, v...)
}

func Error(format string, v ...any) {
	log(LevelError, format, v...)
}
