package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const configFileName = "config.toml"

// Config is the optional user configuration (config.toml). Empty fields fall
// back to the built-in defaults.
type Config struct {
	// DataDir holds the SQLite file. Defaults to <config dir>/data.
	DataDir           string `toml:"data_dir,omitempty"`
	Namespace         string `toml:"namespace,omitempty"`
	SnapshotNamespace string `toml:"snapshot_namespace,omitempty"`
	// Product prefixes export file names.
	Product  string `toml:"product,omitempty"`
	LogLevel string `toml:"log_level,omitempty"`
	// Format is the default CLI output format ("json" or "yaml").
	Format string `toml:"format,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Namespace:         DefaultNamespace,
		SnapshotNamespace: DefaultSnapshotNamespace,
		Product:           DefaultProduct,
		LogLevel:          "warn",
		Format:            "json",
	}
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.associate-os).
	if v := strings.TrimSpace(os.Getenv("ASSOCIATE_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".associate-os"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadConfig reads the config file at path (ConfigPath() when empty) over the
// defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		p, err := ConfigPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

// SaveConfig writes cfg to path (ConfigPath() when empty).
func SaveConfig(path string, cfg Config) error {
	if strings.TrimSpace(path) == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return atomicWriteFile(dir, "config-*.toml", path, buf.Bytes(), 0o644)
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if strings.TrimSpace(c.Namespace) == "" {
		c.Namespace = def.Namespace
	}
	if strings.TrimSpace(c.SnapshotNamespace) == "" {
		c.SnapshotNamespace = def.SnapshotNamespace
	}
	if strings.TrimSpace(c.Product) == "" {
		c.Product = def.Product
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = def.LogLevel
	}
	if strings.TrimSpace(c.Format) == "" {
		c.Format = def.Format
	}
}
