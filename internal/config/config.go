// Package config loads bhava configuration from YAML files with sensible
// defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that overrides the config
// file location.
const EnvConfigPath = "BHAVA_CONFIG"

// DatabaseFile is the name of the fixture database inside the data directory.
const DatabaseFile = "bhava.db"

// Config holds all bhava configuration.
type Config struct {
	Camera   CameraConfig   `yaml:"camera"`
	Detector DetectorConfig `yaml:"detector"`
	Display  DisplayConfig  `yaml:"display"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CameraConfig holds video source settings. Zero width, height or fps keeps
// the device default.
type CameraConfig struct {
	Source string `yaml:"source" validate:"required"`
	Width  int    `yaml:"width" validate:"gte=0"`
	Height int    `yaml:"height" validate:"gte=0"`
	FPS    int    `yaml:"fps" validate:"gte=0"`
}

// DetectorConfig holds face mesh settings.
type DetectorConfig struct {
	MaxFaces        int     `yaml:"max_faces" validate:"gte=1,lte=10"`
	RefineLandmarks bool    `yaml:"refine_landmarks"`
	MinConfidence   float64 `yaml:"min_detection_confidence" validate:"gte=0,lte=1"`
	MinTrackingConf float64 `yaml:"min_tracking_confidence" validate:"gte=0,lte=1"`
	Python          string  `yaml:"python"`
	Script          string  `yaml:"script"`
}

// DisplayConfig selects the front end.
type DisplayConfig struct {
	Mode             string `yaml:"mode" validate:"oneof=window tray none"`
	WindowTitle      string `yaml:"window_title" validate:"required"`
	DrawMesh         bool   `yaml:"draw_mesh"`
	DrawMeasurements bool   `yaml:"draw_measurements"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `yaml:"data_dir" validate:"required"`
}

// ServerConfig holds HTTP settings. An empty address disables the server.
type ServerConfig struct {
	Addr      string `yaml:"addr" validate:"omitempty,hostname_port"`
	StreamFPS int    `yaml:"stream_fps" validate:"gte=1,lte=60"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=1"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Camera: CameraConfig{
			Source: "0",
		},
		Detector: DetectorConfig{
			MaxFaces:        1,
			RefineLandmarks: true,
			MinConfidence:   0.5,
			MinTrackingConf: 0.5,
		},
		Display: DisplayConfig{
			Mode:        "window",
			WindowTitle: "Emotion Detection - Advanced Model",
			DrawMesh:    true,
		},
		Storage: StorageConfig{
			DataDir: "~/.bhava",
		},
		Server: ServerConfig{
			StreamFPS: 15,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// Load loads configuration from the specified file. Keys missing from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return config, fmt.Errorf("parse %s: %w", path, err)
	}

	return config, nil
}

// LoadDefault loads a .env file from the working directory if present, then
// the file named by BHAVA_CONFIG, then ~/.bhava/config.yaml. It returns the
// defaults when no file exists.
func LoadDefault() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path := os.Getenv(EnvConfigPath); path != "" {
		return Load(ExpandPath(path))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfig(), nil
	}

	userConfig := filepath.Join(homeDir, ".bhava", "config.yaml")
	if _, err := os.Stat(userConfig); err == nil {
		return Load(userConfig)
	}

	return DefaultConfig(), nil
}

// ExpandPath expands ~ and environment variables in a path.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("invalid %s: %v (%s)", strings.ToLower(e.Namespace()), e.Value(), e.Tag())
		}
		return err
	}
	return nil
}

// ExpandPaths expands all paths in the configuration.
func (c *Config) ExpandPaths() {
	c.Storage.DataDir = ExpandPath(c.Storage.DataDir)
	c.Logging.File = ExpandPath(c.Logging.File)
	c.Detector.Python = ExpandPath(c.Detector.Python)
	c.Detector.Script = ExpandPath(c.Detector.Script)
}

// EnsureDirectories creates the data directory and the log directory.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Storage.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if c.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.Logging.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	return nil
}

// DatabasePath returns the path of the fixture database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Storage.DataDir, DatabaseFile)
}
