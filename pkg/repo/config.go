package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/odvcencio/gitlite/pkg/object"
)

// FormatVersion is the only repository format version this package reads.
const FormatVersion = 0

// Config is the repository configuration stored in .gitlite/config.
type Config struct {
	Core   CoreConfig   `toml:"core"`
	Object ObjectConfig `toml:"object"`
	User   UserConfig   `toml:"user"`
}

type CoreConfig struct {
	RepositoryFormatVersion int  `toml:"repositoryformatversion"`
	FileMode                bool `toml:"filemode"`
	Bare                    bool `toml:"bare"`
}

type ObjectConfig struct {
	// Compression is the zlib level for new objects; -1 is zlib's default.
	Compression int `toml:"compression"`
	// MaxSize caps the inflated size, in bytes, of an object read back.
	MaxSize int64 `toml:"maxsize"`
}

type UserConfig struct {
	Name       string `toml:"name"`
	Email      string `toml:"email"`
	SigningKey string `toml:"signingkey"`
}

// DefaultConfig returns the configuration written by Init.
func DefaultConfig() *Config {
	return &Config{
		Core:   CoreConfig{RepositoryFormatVersion: FormatVersion},
		Object: ObjectConfig{
			Compression: object.DefaultCompressionLevel,
			MaxSize:     object.DefaultMaxObjectSize,
		},
	}
}

// LoadConfig reads and validates a config file. A missing file, a missing
// or unsupported format version, or an invalid object section yields
// ErrInvalidRepository. Keys left out keep their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: configuration file %s missing", ErrInvalidRepository, path)
		}
		return nil, fmt.Errorf("%w: read config %s: %v", ErrInvalidRepository, path, err)
	}
	if !meta.IsDefined("core", "repositoryformatversion") {
		return nil, fmt.Errorf("%w: %s: core.repositoryformatversion not set", ErrInvalidRepository, path)
	}
	if v := cfg.Core.RepositoryFormatVersion; v != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported repository format version %d", ErrInvalidRepository, v)
	}
	if !object.ValidCompressionLevel(cfg.Object.Compression) {
		return nil, fmt.Errorf("%w: invalid object.compression %d", ErrInvalidRepository, cfg.Object.Compression)
	}
	if cfg.Object.MaxSize <= 0 {
		return nil, fmt.Errorf("%w: invalid object.maxsize %d", ErrInvalidRepository, cfg.Object.MaxSize)
	}
	return cfg, nil
}

// WriteConfig atomically writes cfg to path.
func WriteConfig(path string, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}

// WriteConfig persists cfg as the repository's config and makes it current.
func (r *Repo) WriteConfig(cfg *Config) error {
	if err := WriteConfig(r.path("config"), cfg); err != nil {
		return err
	}
	r.Config = cfg
	return nil
}

// Ident returns the configured user as an author/committer identity at
// time when. Unset fields fall back to "unknown".
func (c *Config) Ident(when time.Time) object.Ident {
	name := strings.TrimSpace(c.User.Name)
	if name == "" {
		name = "unknown"
	}
	email := strings.TrimSpace(c.User.Email)
	if email == "" {
		email = "unknown"
	}
	return object.Ident{Name: name, Email: email, When: when}
}
