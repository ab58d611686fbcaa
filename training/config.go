package training

import (
	"fmt"
	"strings"

	"github.com/poiesic/datamill/config"
	"github.com/poiesic/datamill/core"
)

// Training config keys.
const (
	KeyBaseModel      = "base_model"
	KeyDatasetVersion = "dataset_version"
	KeyLearningRate   = "learning_rate"
	KeyEpochs         = "epochs"
	KeyBatchSize      = "batch_size"
)

var requiredKeys = []string{KeyBaseModel, KeyDatasetVersion, KeyLearningRate, KeyEpochs, KeyBatchSize}

// LoadConfig loads and validates the training config at path.
//
// A missing file yields core.ErrNotFound and a document that is not a YAML
// mapping yields core.ErrFormat. Missing keys, wrong types, and out of range
// values yield core.ErrValidation.
func LoadConfig(path string) (*core.TrainingConfig, error) {
	doc, err := config.LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(doc)
}

// ParseConfig builds a TrainingConfig from a config mapping. String values
// are trimmed.
func ParseConfig(doc config.Document) (*core.TrainingConfig, error) {
	var (
		cfg core.TrainingConfig
		err error
	)
	var missing []string
	for _, key := range requiredKeys {
		if !doc.Has(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %w: %s", core.ErrValidation, core.ErrMissingField, strings.Join(missing, ", "))
	}

	if cfg.BaseModel, err = doc.String(KeyBaseModel); err != nil {
		return nil, err
	}
	if cfg.DatasetVersion, err = doc.String(KeyDatasetVersion); err != nil {
		return nil, err
	}
	if cfg.LearningRate, err = doc.Float(KeyLearningRate); err != nil {
		return nil, err
	}
	if cfg.Epochs, err = doc.Int(KeyEpochs); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = doc.Int(KeyBatchSize); err != nil {
		return nil, err
	}

	if err := core.ValidateTrainingConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
