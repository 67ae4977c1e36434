// SPDX-FileCopyrightText: Copyright 2025 The gitcred Authors
// SPDX-License-Identifier: Apache-2.0

// Package config contains the definition of the application config
// structure and the logic required to load it.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the configuration of the application. All settings can
// be supplied through GITCRED_-prefixed environment variables
// (GITCRED_TOKEN_DURATION, GITCRED_CA_CERT_PATH, ...).
type Config struct {
	// TokenDuration bounds the validity of minted personal access tokens.
	// Zero leaves the service default in place.
	TokenDuration time.Duration `mapstructure:"token_duration"`

	// CompactToken requests the short token representation.
	CompactToken bool `mapstructure:"compact_token"`

	// TokenScope is the scope requested for minted tokens.
	TokenScope string `mapstructure:"token_scope"`

	// CACertPath optionally names a CA bundle for deployments with private
	// certificate authorities.
	CACertPath string `mapstructure:"ca_cert_path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("token_duration", time.Duration(0))
	v.SetDefault("compact_token", true)
	v.SetDefault("token_scope", "vso.code_write")
	v.SetDefault("ca_cert_path", "")
}

// Load reads the configuration from the environment, falling back to
// defaults for anything unset.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("GITCRED")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.TokenDuration < 0 {
		return nil, fmt.Errorf("token_duration must not be negative")
	}
	return &cfg, nil
}
