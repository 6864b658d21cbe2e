package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected logrus.Level
	}{
		{"debug level", "debug", logrus.DebugLevel},
		{"info level", "info", logrus.InfoLevel},
		{"warn level", "warn", logrus.WarnLevel},
		{"error level", "error", logrus.ErrorLevel},
		{"unknown level defaults to info", "unknown", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Init(Config{Level: tt.level}); err != nil {
				t.Fatalf("Init() error = %v", err)
			}
			if Logger.GetLevel() != tt.expected {
				t.Errorf("expected level %v, got %v", tt.expected, Logger.GetLevel())
			}
		})
	}
}

func TestInit_WithLogFile(t *testing.T) {
	defer Init(Config{Level: "info"})

	logFile := filepath.Join(t.TempDir(), "subdir", "nested", "bhava.log")

	err := Init(Config{Level: "info", File: logFile, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1, NoColors: true})
	if err != nil {
		t.Fatalf("Init with log file failed: %v", err)
	}

	Component("test").Info("written to file")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("log file was not written: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("expected message in log file, got %q", data)
	}
}

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("debug")
	if Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug, got %v", Logger.GetLevel())
	}

	SetLevel("bogus")
	if Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("unknown level should be ignored, got %v", Logger.GetLevel())
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	Logger.SetOutput(&buf)
	Logger.SetFormatter(newFormatter(true))
	defer Logger.SetOutput(os.Stderr)

	Component("app").WithFields(Fields{"label": "Happy"}).Info("classified")

	out := buf.String()
	for _, want := range []string{"[component:app]", "[label:Happy]", "classified"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output %q", want, out)
		}
	}
}
