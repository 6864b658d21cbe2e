package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Camera.Source != "0" {
		t.Errorf("expected camera source 0, got %s", cfg.Camera.Source)
	}
	if cfg.Camera.Width != 0 || cfg.Camera.Height != 0 || cfg.Camera.FPS != 0 {
		t.Error("expected camera resolution and fps to keep device defaults")
	}
	if cfg.Detector.MaxFaces != 1 {
		t.Errorf("expected max faces 1, got %d", cfg.Detector.MaxFaces)
	}
	if !cfg.Detector.RefineLandmarks {
		t.Error("expected refined landmarks by default")
	}
	if cfg.Display.Mode != "window" {
		t.Errorf("expected display mode window, got %s", cfg.Display.Mode)
	}
	if cfg.Display.WindowTitle != "Emotion Detection - Advanced Model" {
		t.Errorf("unexpected window title %q", cfg.Display.WindowTitle)
	}
	if cfg.Server.Addr != "" {
		t.Errorf("expected server to be disabled, got %q", cfg.Server.Addr)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	configContent := `
camera:
  source: /videos/sample.mp4
  width: 1280
  height: 720

detector:
  max_faces: 2
  min_detection_confidence: 0.7

display:
  mode: none

server:
  addr: 127.0.0.1:8090

logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Camera.Source != "/videos/sample.mp4" {
		t.Errorf("expected source /videos/sample.mp4, got %s", cfg.Camera.Source)
	}
	if cfg.Camera.Width != 1280 || cfg.Camera.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Camera.Width, cfg.Camera.Height)
	}
	if cfg.Detector.MaxFaces != 2 {
		t.Errorf("expected max faces 2, got %d", cfg.Detector.MaxFaces)
	}
	if cfg.Detector.MinConfidence != 0.7 {
		t.Errorf("expected min confidence 0.7, got %f", cfg.Detector.MinConfidence)
	}
	// Unset keys keep defaults.
	if cfg.Detector.MinTrackingConf != 0.5 {
		t.Errorf("expected tracking confidence default 0.5, got %f", cfg.Detector.MinTrackingConf)
	}
	if cfg.Display.Mode != "none" {
		t.Errorf("expected display mode none, got %s", cfg.Display.Mode)
	}
	if cfg.Server.Addr != "127.0.0.1:8090" {
		t.Errorf("expected server addr, got %q", cfg.Server.Addr)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should be valid: %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err == nil {
			t.Error("expected error for missing file")
		}
		if cfg == nil || cfg.Camera.Source != "0" {
			t.Error("expected default config alongside error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("camera: [unterminated"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestLoadDefault_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(path, []byte("camera:\n  source: \"2\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault failed: %v", err)
	}
	if cfg.Camera.Source != "2" {
		t.Errorf("expected source from BHAVA_CONFIG, got %s", cfg.Camera.Source)
	}
}

func TestLoadDefault_NoFiles(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault failed: %v", err)
	}
	if cfg.Display.Mode != "window" {
		t.Errorf("expected defaults, got mode %s", cfg.Display.Mode)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"empty source", func(c *Config) { c.Camera.Source = "" }, "source"},
		{"negative width", func(c *Config) { c.Camera.Width = -1 }, "width"},
		{"zero max faces", func(c *Config) { c.Detector.MaxFaces = 0 }, "maxfaces"},
		{"confidence above one", func(c *Config) { c.Detector.MinConfidence = 1.5 }, "minconfidence"},
		{"unknown display mode", func(c *Config) { c.Display.Mode = "fullscreen" }, "mode"},
		{"bad server addr", func(c *Config) { c.Server.Addr = "not an address" }, "addr"},
		{"stream fps zero", func(c *Config) { c.Server.StreamFPS = 0 }, "streamfps"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, "level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	t.Setenv("BHAVA_TEST_DIR", "/srv/bhava")

	tests := []struct {
		input string
		want  string
	}{
		{"~/.bhava", filepath.Join(homeDir, ".bhava")},
		{"$BHAVA_TEST_DIR/data", "/srv/bhava/data"},
		{"/absolute/path", "/absolute/path"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Storage.DataDir = filepath.Join(tmpDir, "data")
	cfg.Logging.File = filepath.Join(tmpDir, "logs", "bhava.log")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Storage.DataDir, filepath.Dir(cfg.Logging.File)} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist", dir)
		}
	}

	if got := cfg.DatabasePath(); got != filepath.Join(tmpDir, "data", "bhava.db") {
		t.Errorf("unexpected database path %s", got)
	}
}
