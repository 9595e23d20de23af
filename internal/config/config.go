package config

import (
	"errors"
	"time"
)

// Config holds server and client configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	PositionMargin  float64 `mapstructure:"position_margin" yaml:"position_margin"`
	ColorSaturation float64 `mapstructure:"color_saturation" yaml:"color_saturation"`
	ColorLightness  float64 `mapstructure:"color_lightness" yaml:"color_lightness"`

	ClientBuffer        int     `mapstructure:"client_buffer" yaml:"client_buffer"`
	MaxUpdatesPerSecond float64 `mapstructure:"max_updates_per_second" yaml:"max_updates_per_second"`

	// Client side.
	ServerURL    string        `mapstructure:"server_url" yaml:"server_url"`
	EmitInterval time.Duration `mapstructure:"emit_interval" yaml:"emit_interval"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:                ":8080",
		ReadHeaderTimeout:   5 * time.Second,
		ShutdownTimeout:     5 * time.Second,
		LogLevel:            "info",
		PositionMargin:      0.1,
		ColorSaturation:     0.85,
		ColorLightness:      0.6,
		ClientBuffer:        32,
		MaxUpdatesPerSecond: 20,
		ServerURL:           "ws://localhost:8080/ws",
		EmitInterval:        120 * time.Millisecond,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.PositionMargin != 0 {
		c.PositionMargin = other.PositionMargin
	}
	if other.ColorSaturation != 0 {
		c.ColorSaturation = other.ColorSaturation
	}
	if other.ColorLightness != 0 {
		c.ColorLightness = other.ColorLightness
	}
	if other.ClientBuffer != 0 {
		c.ClientBuffer = other.ClientBuffer
	}
	if other.MaxUpdatesPerSecond != 0 {
		c.MaxUpdatesPerSecond = other.MaxUpdatesPerSecond
	}
	if other.ServerURL != "" {
		c.ServerURL = other.ServerURL
	}
	if other.EmitInterval != 0 {
		c.EmitInterval = other.EmitInterval
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.PositionMargin <= 0 || c.PositionMargin >= 0.5:
		return errors.New("position_margin must be in (0, 0.5)")
	case c.ColorSaturation <= 0 || c.ColorSaturation > 1:
		return errors.New("color_saturation must be in (0, 1]")
	case c.ColorLightness <= 0 || c.ColorLightness > 1:
		return errors.New("color_lightness must be in (0, 1]")
	case c.ClientBuffer <= 0:
		return errors.New("client_buffer must be positive")
	case c.MaxUpdatesPerSecond < 0:
		return errors.New("max_updates_per_second must not be negative")
	case c.EmitInterval <= 0:
		return errors.New("emit_interval must be positive")
	}
	return nil
}
