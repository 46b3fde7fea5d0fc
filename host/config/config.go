package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the host tool configuration file.
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	Listen ListenConfig `yaml:"listen"`
}

type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// ListenConfig configures the telemetry receivers. The controller
// pushes one JSON line per second over UDP and, when the link is up,
// the same line over TCP.
type ListenConfig struct {
	UDPAddr string `yaml:"udp_addr"`
	TCPAddr string `yaml:"tcp_addr"`
	WSAddr  string `yaml:"ws_addr"` // optional websocket rebroadcast
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Device: "/dev/ttyACM0",
			Baud:   115200,
		},
		Listen: ListenConfig{
			UDPAddr: ":9095",
			TCPAddr: ":9096",
		},
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the commands cannot act on.
func Validate(cfg *Config) error {
	if cfg.Serial.Device == "" {
		return fmt.Errorf("serial.device must not be empty")
	}
	if cfg.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud must be positive, got %d", cfg.Serial.Baud)
	}
	if cfg.Listen.UDPAddr == "" && cfg.Listen.TCPAddr == "" {
		return fmt.Errorf("listen needs at least one of udp_addr, tcp_addr")
	}
	return nil
}
