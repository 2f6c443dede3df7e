package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DeviceSerial DeviceType = "serial"
	DeviceSim    DeviceType = "sim"
)

type DeviceType string

// Config represents the capture tool configuration.
type Config struct {
	Settings Settings      `yaml:"settings"`
	Device   DeviceConfig  `yaml:"device"`
	Storage  StorageConfig `yaml:"storage"`
}

// Settings represents global application settings.
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// Level parses the configured log level, defaulting to info.
func (s Settings) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Duration is a time.Duration that unmarshals from YAML strings such as
// "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration '%s': %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// DeviceConfig selects and configures the edge source.
type DeviceConfig struct {
	Type        DeviceType `yaml:"type"`
	SerialPort  string     `yaml:"serialPort"`
	BaudRate    int        `yaml:"baudRate"`
	EdgeCount   int        `yaml:"edgeCount"`
	IdleTimeout Duration   `yaml:"idleTimeout"`
}

// StorageConfig locates the store document and the optional journal.
type StorageConfig struct {
	File          string `yaml:"file"`
	JournalDir    string `yaml:"journalDirectory"`
	JournalEnable bool   `yaml:"journalEnabled"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	p, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(p, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	switch DeviceType(strings.ToLower(string(config.Device.Type))) {
	case DeviceSerial:
		config.Device.Type = DeviceSerial
		if config.Device.SerialPort == "" {
			return nil, fmt.Errorf("device type '%s' requires a serial port", DeviceSerial)
		}
		if config.Device.BaudRate == 0 {
			config.Device.BaudRate = 115200
		}

	case DeviceSim:
		config.Device.Type = DeviceSim

	default:
		return nil, fmt.Errorf("unknown device type '%s'", config.Device.Type)
	}

	if config.Storage.File == "" {
		return nil, fmt.Errorf("no store file configured")
	}
	if config.Storage.JournalEnable && config.Storage.JournalDir == "" {
		return nil, fmt.Errorf("journal enabled without a journal directory")
	}

	return &config, nil
}
