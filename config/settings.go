package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/poiesic/datamill/core"
)

// EnvPrefix prefixes every environment variable LoadSettings reads.
const EnvPrefix = "DATAMILL_"

// Default artifact layout, relative to the working directory.
const (
	DefaultArtifactsDir = "artifacts"
	DefaultWorkers      = 4
)

// Settings locate the workspace artifacts. Empty paths are derived from
// ArtifactsDir by ApplyDefaults.
type Settings struct {
	ArtifactsDir   string `koanf:"artifacts_dir"`
	DatasetsDir    string `koanf:"datasets_dir"`
	ModelsDir      string `koanf:"models_dir"`
	EvaluationsDir string `koanf:"evaluations_dir"`
	RegistryPath   string `koanf:"registry_path"`
	CatalogPath    string `koanf:"catalog_path"`
	Workers        int    `koanf:"workers"`
}

// SettingsOption overrides a loaded setting.
type SettingsOption func(k *koanf.Koanf) error

// WithArtifactsDir overrides artifacts_dir. Paths not set elsewhere are
// derived from it.
func WithArtifactsDir(dir string) SettingsOption {
	return func(k *koanf.Koanf) error {
		if dir == "" {
			return nil
		}
		return k.Set("artifacts_dir", dir)
	}
}

// WithWorkers overrides the build worker count.
func WithWorkers(n int) SettingsOption {
	return func(k *koanf.Koanf) error {
		return k.Set("workers", n)
	}
}

// LoadSettings loads workspace settings.
//
// Precedence (highest to lowest):
//  1. opts, typically from command line flags
//  2. DATAMILL_* environment variables (DATAMILL_MODELS_DIR -> models_dir)
//  3. the YAML file at path, if path is non-empty
//  4. defaults rooted at DefaultArtifactsDir
func LoadSettings(path string, opts ...SettingsOption) (*Settings, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: settings file %s", core.ErrNotFound, path)
			}
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: settings file %s: %w", core.ErrFormat, path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	for _, opt := range opts {
		if err := opt(k); err != nil {
			return nil, fmt.Errorf("failed to apply settings override: %w", err)
		}
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("%w: settings: %w", core.ErrFormat, err)
	}
	s.ApplyDefaults()

	if s.Workers < 1 {
		return nil, fmt.Errorf("%w: %w: workers must be positive, got %d", core.ErrValidation, core.ErrOutOfRange, s.Workers)
	}
	return &s, nil
}

// DefaultSettings returns settings rooted at artifactsDir.
func DefaultSettings(artifactsDir string) *Settings {
	s := &Settings{ArtifactsDir: artifactsDir}
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills every empty field from ArtifactsDir.
func (s *Settings) ApplyDefaults() {
	if s.ArtifactsDir == "" {
		s.ArtifactsDir = DefaultArtifactsDir
	}
	if s.DatasetsDir == "" {
		s.DatasetsDir = filepath.Join(s.ArtifactsDir, "datasets")
	}
	if s.ModelsDir == "" {
		s.ModelsDir = filepath.Join(s.ArtifactsDir, "models")
	}
	if s.EvaluationsDir == "" {
		s.EvaluationsDir = filepath.Join(s.ArtifactsDir, "evaluations")
	}
	if s.RegistryPath == "" {
		s.RegistryPath = filepath.Join(s.ArtifactsDir, "registry", "models.json")
	}
	if s.CatalogPath == "" {
		s.CatalogPath = filepath.Join(s.ArtifactsDir, "catalog")
	}
	if s.Workers == 0 {
		s.Workers = DefaultWorkers
	}
}

// envKey maps DATAMILL_DATASETS_DIR to datasets_dir.
func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}
