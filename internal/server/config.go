package server

import (
	"time"

	"github.com/pkg/errors"
)

// Config holds server configuration
type Config struct {
	// Network settings
	Addr        string `yaml:"addr"`
	MaxSessions int    `yaml:"max_sessions"`

	// Connection settings
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	PingInterval      time.Duration `yaml:"ping_interval"`
	MaxMessageSize    int64         `yaml:"max_message_size"`
	SendBuffer        int           `yaml:"send_buffer"`

	// Sessions idle longer than IdleTimeout are closed by the reaper.
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ReapInterval    time.Duration `yaml:"reap_interval"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// AllowedOrigins lists accepted websocket origins. Empty allows all.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Addr:              "127.0.0.1:8080",
		MaxSessions:       1000,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      5 * time.Second,
		PingInterval:      30 * time.Second,
		MaxMessageSize:    4 * 1024,
		SendBuffer:        64,
		IdleTimeout:       10 * time.Minute,
		ReapInterval:      30 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.Wrap(ErrInvalidConfig, "empty listen address")
	case c.MaxSessions <= 0:
		return errors.Wrap(ErrInvalidConfig, "max sessions must be positive")
	case c.WriteTimeout <= 0 || c.PingInterval <= 0:
		return errors.Wrap(ErrInvalidConfig, "write timeout and ping interval must be positive")
	case c.MaxMessageSize <= 0 || c.SendBuffer <= 0:
		return errors.Wrap(ErrInvalidConfig, "message size and send buffer must be positive")
	case c.IdleTimeout <= 0 || c.ReapInterval <= 0:
		return errors.Wrap(ErrInvalidConfig, "idle timeout and reap interval must be positive")
	case c.ShutdownTimeout <= 0:
		return errors.Wrap(ErrInvalidConfig, "shutdown timeout must be positive")
	}
	return nil
}
