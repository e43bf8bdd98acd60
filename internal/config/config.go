// Package config reads the skboot host's settings from the environment.
// Command-line flags take precedence over every value here.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the environment-provided defaults of the CLI host.
type Env struct {
	ModsDir                 string `env:"SKBOOT_MODS_DIR" envDefault:"Mods"`
	WorkDir                 string `env:"SKBOOT_WORKDIR"`
	HostVersion             string `env:"SKBOOT_HOST_VERSION"`
	HostVersionWithoutBuild string `env:"SKBOOT_HOST_VERSION_WITHOUT_BUILD"`
	Platform                string `env:"SKBOOT_PLATFORM"`
	LogLevel                string `env:"SKBOOT_LOG_LEVEL" envDefault:"info"`
	LogFormat               string `env:"SKBOOT_LOG_FORMAT" envDefault:"text"`
	Atomic                  bool   `env:"SKBOOT_ATOMIC"`
}

// ParseEnv loads Env from the process environment.
func ParseEnv() (Env, error) {
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
