package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr   string `yaml:"addr"`
	DBPath string `yaml:"db_path"`
}

func Default() Config {
	return Config{
		Addr:   "127.0.0.1:8080",
		DBPath: "kuri.db",
	}
}

// Load applique, dans l'ordre : défauts, fichier YAML optionnel
// (KURI_CONFIG, défaut kuri.yaml, absent = ignoré), puis variables
// d'environnement.
func Load() (Config, error) {
	cfg := Default()

	path := envOr("KURI_CONFIG", "kuri.yaml")
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	case errors.Is(err, fs.ErrNotExist):
		// pas de fichier : on reste sur les défauts
	default:
		return Config{}, err
	}

	cfg.Addr = envOr("KURI_ADDR", cfg.Addr)
	cfg.DBPath = envOr("KURI_DB_PATH", cfg.DBPath)
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
