package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// ServeConfig configures one websocket-backed node started by "serve".
// NodeUID, ListenAddr and QuorumSize are readable from a YAML file
// (--config) or from PAXOSDEMO_-prefixed environment variables, the same
// cleanenv pattern the rest of the pack uses for service configuration.
// Peers (uid -> dial URL) is YAML-only: cleanenv's env source only binds
// scalar-tagged fields, and a peer map has no natural single-variable
// env encoding. Since Peers must name at least one peer, a configuration
// read from environment variables alone (no --config) fails validation.
type ServeConfig struct {
	NodeUID    string            `yaml:"node_uid" env:"PAXOSDEMO_NODE_UID" validate:"required"`
	ListenAddr string            `yaml:"listen_addr" env:"PAXOSDEMO_LISTEN_ADDR" env-default:":8080"`
	Peers      map[string]string `yaml:"peers" validate:"min=1"`
	QuorumSize int               `yaml:"quorum_size" env:"PAXOSDEMO_QUORUM_SIZE" validate:"required,min=1"`
}

// loadServeConfig reads path if given, overlays environment variables,
// and validates the result before a node is ever constructed from it.
func loadServeConfig(path string) (*ServeConfig, error) {
	var cfg ServeConfig
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
