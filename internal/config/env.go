package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvPort     = "PORT"
	EnvAddr     = "MARIONETTE_ADDR"
	EnvRelayURL = "MARIONETTE_RELAY_URL"
)

// LoadEnv reads the given .env files (".env" when none are named) into the
// process environment and applies the overrides to cfg. Missing files are
// ignored. MARIONETTE_ADDR wins over PORT.
func LoadEnv(cfg *Config, files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	if port, err := GetEnvVariable(EnvPort); err == nil {
		cfg.Relay.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	if addr, err := GetEnvVariable(EnvAddr); err == nil {
		cfg.Relay.Addr = addr
	}
	if url, err := GetEnvVariable(EnvRelayURL); err == nil {
		cfg.Viewer.RelayURL = url
	}
	return nil
}

func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := os.Getenv(v)
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}
	return b, nil
}
