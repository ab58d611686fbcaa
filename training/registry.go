package training

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/poiesic/datamill/core"
	"github.com/poiesic/datamill/internal/fsutil"
)

// DefaultRegistryPath is the registry file used when none is configured.
const DefaultRegistryPath = "artifacts/registry/models.json"

// registryDocument is the on-disk registry. Entries are kept raw so that
// entries this version cannot decode survive a rewrite.
type registryDocument struct {
	Models []json.RawMessage `json:"models"`
}

// Registry is a flat-file list of registered model versions.
// A Registry is safe for concurrent use within one process.
type Registry struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewRegistry returns a registry backed by the JSON file at path. The file
// is created on the first Register.
func NewRegistry(path string, logger *slog.Logger) *Registry {
	if path == "" {
		path = DefaultRegistryPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{path: path, logger: logger}
}

// Path returns the registry file location.
func (r *Registry) Path() string {
	return r.path
}

// Register appends meta and rewrites the registry file atomically.
// Registering the same version twice keeps both entries.
func (r *Registry) Register(meta *core.ModelMetadata) error {
	if meta == nil {
		return fmt.Errorf("%w: model metadata is nil", core.ErrValidation)
	}
	entry, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode model metadata: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	doc.Models = append(doc.Models, entry)
	if err := fsutil.WriteJSONAtomic(r.path, doc, 0o644); err != nil {
		return fmt.Errorf("failed to save registry %s: %w", r.path, err)
	}
	r.logger.Info("registered model", "model", meta.ModelVersion, "registry", r.path)
	return nil
}

// List returns every registered model in registration order. Entries that
// are not model objects are skipped.
func (r *Registry) List() ([]core.ModelMetadata, error) {
	r.mu.Lock()
	doc, err := r.load()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	models := make([]core.ModelMetadata, 0, len(doc.Models))
	for i, raw := range doc.Models {
		var m core.ModelMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			r.logger.Warn("skipping unreadable registry entry", "registry", r.path, "index", i, "err", err)
			continue
		}
		models = append(models, m)
	}
	return models, nil
}

// Get returns the first registered model with the given version.
func (r *Registry) Get(modelVersion string) (*core.ModelMetadata, error) {
	models, err := r.List()
	if err != nil {
		return nil, err
	}
	for i := range models {
		if models[i].ModelVersion == modelVersion {
			return &models[i], nil
		}
	}
	return nil, fmt.Errorf("%w: model %s", core.ErrNotFound, modelVersion)
}

// load reads the registry file. An absent or malformed file reads as an
// empty registry; only I/O failures are errors.
func (r *Registry) load() (*registryDocument, error) {
	empty := &registryDocument{Models: []json.RawMessage{}}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return empty, nil
		}
		return nil, fmt.Errorf("failed to read registry %s: %w", r.path, err)
	}

	var doc registryDocument
	if err := json.Unmarshal(data, &doc); err != nil || doc.Models == nil {
		r.logger.Warn("treating malformed registry as empty", "registry", r.path, "err", err)
		return empty, nil
	}
	return &doc, nil
}
