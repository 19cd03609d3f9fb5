package config

import (
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libconfig"
)

// ClientConfig drives the probe command, which talks to a running harness over its websocket endpoint.
type ClientConfig struct {
	Logger l.Wrapper `yaml:"-"`

	ServerURL string `yaml:"ServerURL"`
	AppID     string `yaml:"AppID"`
	UserID    string `yaml:"UserID"`
	Token     string `yaml:"Token"`
	Channel   string `yaml:"Channel"`
}

func LoadClientConfig(file string) (*ClientConfig, error) {
	cfg := &ClientConfig{
		Logger: newLogger(),
	}

	if _, err := libconfig.Load(file, cfg); err != nil {
		return nil, err
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = "ws://127.0.0.1:8610/rtm"
	}

	return cfg, nil
}
