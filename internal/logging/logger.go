// Package logging provides the application-wide logger.
// It wraps logrus so every component logs with the same format and output.
package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the application-wide logger instance.
var Logger *logrus.Logger

// Fields is an alias for logrus.Fields for convenience.
type Fields = logrus.Fields

// Config controls log level and optional file output.
type Config struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	NoColors   bool
}

func init() {
	Logger = logrus.New()
	Logger.SetFormatter(newFormatter(false))
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
}

func newFormatter(noColors bool) logrus.Formatter {
	return &formatter.Formatter{
		NoColors:        noColors,
		TimestampFormat: "2006-01-02 15:04:05",
		HideKeys:        false,
		FieldsOrder:     []string{"component"},
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, s[len(s)-1])
		},
	}
}

// Init configures the logger. When cfg.File is set, output goes to both
// stderr and a size-rotated file.
func Init(cfg Config) error {
	Logger.SetLevel(parseLevel(cfg.Level))
	Logger.SetFormatter(newFormatter(cfg.NoColors))

	if cfg.File == "" {
		Logger.SetOutput(os.Stderr)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		LocalTime:  true,
		Compress:   true,
		MaxSize:    cfg.MaxSizeMB,
		MaxAge:     cfg.MaxAgeDays,
		MaxBackups: cfg.MaxBackups,
	}

	Logger.SetOutput(io.MultiWriter(os.Stderr, fileWriter))
	Logger.SetReportCaller(Logger.IsLevelEnabled(logrus.DebugLevel))

	return nil
}

// SetLevel sets the logging level. Unknown names are ignored.
func SetLevel(level string) {
	switch level {
	case "debug", "info", "warn", "error":
		Logger.SetLevel(parseLevel(level))
	}
}

func parseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Component returns an entry tagged with the component name.
func Component(name string) *logrus.Entry {
	return Logger.WithField("component", name)
}
