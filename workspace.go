// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package datamill

import (
	"log/slog"

	"github.com/poiesic/datamill/audit"
	"github.com/poiesic/datamill/config"
	"github.com/poiesic/datamill/evaluation"
	"github.com/poiesic/datamill/ingestion"
	"github.com/poiesic/datamill/storage"
	"github.com/poiesic/datamill/storage/badger"
	"github.com/poiesic/datamill/training"
)

// Paths locates the artifacts of a workspace.
type Paths struct {
	Datasets    string
	Models      string
	Evaluations string
	Registry    string
	Catalog     string
}

// PathsFrom derives Paths from settings. Empty settings fields take their
// defaults first.
func PathsFrom(s *config.Settings) Paths {
	var c config.Settings
	if s != nil {
		c = *s
	}
	c.ApplyDefaults()
	return Paths{
		Datasets:    c.DatasetsDir,
		Models:      c.ModelsDir,
		Evaluations: c.EvaluationsDir,
		Registry:    c.RegistryPath,
		Catalog:     c.CatalogPath,
	}
}

// Workspace wires every datamill component to one artifact layout.
type Workspace struct {
	paths    Paths
	workers  int
	backend  *badger.Backend
	catalog  storage.DatasetCatalog
	registry *training.Registry
	logger   *slog.Logger
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*workspaceOptions)

type workspaceOptions struct {
	logger         *slog.Logger
	inMemory       bool
	withoutCatalog bool
}

// WithLogger sets the logger handed to every component.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) WorkspaceOption {
	return func(o *workspaceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithInMemoryCatalog keeps the dataset catalog in memory instead of at
// the catalog path.
func WithInMemoryCatalog() WorkspaceOption {
	return func(o *workspaceOptions) {
		o.inMemory = true
	}
}

// WithoutCatalog skips opening the dataset catalog. Builds are then not
// recorded and Catalog returns nil.
func WithoutCatalog() WorkspaceOption {
	return func(o *workspaceOptions) {
		o.withoutCatalog = true
	}
}

// OpenWorkspace opens the workspace described by settings. A nil settings
// value uses the defaults rooted at config.DefaultArtifactsDir.
func OpenWorkspace(settings *config.Settings, opts ...WorkspaceOption) (*Workspace, error) {
	options := &workspaceOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	paths := PathsFrom(settings)
	workers := config.DefaultWorkers
	if settings != nil && settings.Workers > 0 {
		workers = settings.Workers
	}

	w := &Workspace{
		paths:    paths,
		workers:  workers,
		registry: training.NewRegistry(paths.Registry, options.logger),
		logger:   options.logger,
	}
	if options.withoutCatalog {
		return w, nil
	}

	backend, err := badger.OpenBackend(paths.Catalog, options.inMemory)
	if err != nil {
		return nil, err
	}
	catalog, err := badger.NewDatasetCatalog(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	w.backend = backend
	w.catalog = catalog
	return w, nil
}

// Close closes the catalog and its backend.
func (w *Workspace) Close() error {
	if w.catalog != nil {
		if err := w.catalog.Close(); err != nil {
			w.logger.Error("error closing dataset catalog", "err", err)
			return err
		}
	}
	if w.backend != nil {
		if err := w.backend.Close(); err != nil {
			w.logger.Error("error closing backend storage", "err", err)
			return err
		}
	}
	return nil
}

func (w *Workspace) Paths() Paths {
	return w.paths
}

func (w *Workspace) Catalog() storage.DatasetCatalog {
	return w.catalog
}

func (w *Workspace) Registry() *training.Registry {
	return w.registry
}

// NewIngestionPipeline returns a build pipeline that writes under the
// datasets directory and records builds in the catalog. opts are applied
// after the workspace defaults.
func (w *Workspace) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	defaults := []ingestion.Option{
		ingestion.WithLogger(w.logger),
		ingestion.WithDefaultOutputDir(w.paths.Datasets),
		ingestion.WithPoolSize(w.workers),
	}
	if w.catalog != nil {
		defaults = append(defaults, ingestion.WithCatalog(w.catalog))
	}
	return ingestion.NewPipeline(append(defaults, opts...)...)
}

func (w *Workspace) NewTrainer(opts ...training.TrainerOption) *training.Trainer {
	defaults := []training.TrainerOption{
		training.WithDatasetsDir(w.paths.Datasets),
		training.WithModelsDir(w.paths.Models),
		training.WithTrainerLogger(w.logger),
	}
	return training.NewTrainer(append(defaults, opts...)...)
}

func (w *Workspace) NewEvaluator(opts ...evaluation.Option) *evaluation.Evaluator {
	defaults := []evaluation.Option{
		evaluation.WithModelsDir(w.paths.Models),
		evaluation.WithOutputDir(w.paths.Evaluations),
		evaluation.WithLogger(w.logger),
	}
	return evaluation.NewEvaluator(append(defaults, opts...)...)
}

// NewTrainingPipeline chains the workspace trainer, registry, and evaluator.
func (w *Workspace) NewTrainingPipeline() (*training.Pipeline, error) {
	return training.NewPipeline(
		w.NewTrainer(),
		w.registry,
		w.NewEvaluator(),
		training.WithPipelineLogger(w.logger),
	)
}

// NewAuditor returns an auditor over the datasets directory, comparing
// against the catalog when one is open.
func (w *Workspace) NewAuditor(opts ...audit.Option) *audit.Auditor {
	defaults := []audit.Option{
		audit.WithLogger(w.logger),
	}
	if w.catalog != nil {
		defaults = append(defaults, audit.WithCatalog(w.catalog))
	}
	return audit.NewAuditor(w.paths.Datasets, append(defaults, opts...)...)
}
