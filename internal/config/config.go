// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Host        string
	Port        int
	CatalogPath string
}

// Load reads .env when present and then the environment. Values missing from
// both fall back to defaults.
func Load() (*Config, error) {
	return LoadFile(".env")
}

func LoadFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
	}

	cfg := &Config{
		Host:        getEnv("NUTRICALCI_HOST", "0.0.0.0"),
		Port:        8012,
		CatalogPath: getEnv("NUTRICALCI_CATALOG", "database.csv"),
	}

	if v := os.Getenv("NUTRICALCI_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid NUTRICALCI_PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
