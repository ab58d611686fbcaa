package ingestion

import (
	"github.com/poiesic/datamill/config"
	"github.com/poiesic/datamill/core"
	"github.com/poiesic/datamill/curate"
)

// DefaultOutputDir is where versions are written when a config names no
// output_dir.
const DefaultOutputDir = "artifacts/datasets"

// Dataset config keys read by the pipeline.
const (
	KeyInputPath   = "input_path"
	KeySource      = "source"
	KeyVersionName = "version_name"
	KeyOutputDir   = "output_dir"
)

// BuildConfig is the typed view of a dataset config document.
type BuildConfig struct {
	InputPath   string
	Source      string
	VersionName string
	OutputDir   string
	Filter      curate.Options

	// Document is the whole config, recorded verbatim in metadata.json.
	Document config.Document
}

// LoadBuildConfig loads and parses the dataset config at path.
func LoadBuildConfig(path, defaultOutputDir string) (*BuildConfig, error) {
	doc, err := config.LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return ParseBuildConfig(doc, defaultOutputDir)
}

// ParseBuildConfig extracts the pipeline and filter keys from doc.
// input_path, source, and version_name are required strings.
func ParseBuildConfig(doc config.Document, defaultOutputDir string) (*BuildConfig, error) {
	if defaultOutputDir == "" {
		defaultOutputDir = DefaultOutputDir
	}

	var (
		cfg = BuildConfig{Document: doc}
		err error
	)
	if cfg.InputPath, err = doc.String(KeyInputPath); err != nil {
		return nil, err
	}
	if cfg.Source, err = doc.String(KeySource); err != nil {
		return nil, err
	}
	if cfg.VersionName, err = doc.String(KeyVersionName); err != nil {
		return nil, err
	}
	if err := core.ValidateVersionName(cfg.VersionName); err != nil {
		return nil, err
	}
	if cfg.OutputDir, err = doc.StringOr(KeyOutputDir, defaultOutputDir); err != nil {
		return nil, err
	}
	if cfg.Filter, err = curate.OptionsFromMap(doc); err != nil {
		return nil, err
	}
	return &cfg, nil
}
