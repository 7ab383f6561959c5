// Package config assembles the process configuration from a YAML file laid
// over built-in defaults.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/shatter/internal/core/observability/log"
	"github.com/zeusync/shatter/internal/core/session"
	"github.com/zeusync/shatter/internal/core/world"
	"github.com/zeusync/shatter/internal/server"
)

// Config is the root document:
//
//	server:
//	  addr: 127.0.0.1:8080
//	log:
//	  level: debug
//	world:
//	  gravity: 1000
//	  break:
//	    stagger: 300ms
//	session:
//	  tick_rate: 60
//	levels: levels.yaml
type Config struct {
	Server  server.Config  `yaml:"server"`
	Log     log.Config     `yaml:"log"`
	World   world.Config   `yaml:"world"`
	Session session.Config `yaml:"session"`
	// Levels is an optional level catalog file. The built-in levels are used
	// when it is empty.
	Levels string `yaml:"levels"`
}

func Default() Config {
	return Config{
		Server:  server.DefaultConfig(),
		Log:     log.DefaultConfig(),
		World:   world.DefaultConfig(),
		Session: session.DefaultConfig(),
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Decode reads a YAML document over the defaults and validates the result.
// Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if err := c.World.Validate(); err != nil {
		return err
	}
	return c.Session.Validate()
}
