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


package core

import (
	"fmt"
	"strings"
)

// ValidateVersionName checks that name can be used as a single directory
// component under an artifact root.
//
// Validation rules:
//   - name must not be empty or only whitespace
//   - name must not be "." or ".."
//   - name must not contain a path separator
func ValidateVersionName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %w: name is empty", ErrValidation, ErrInvalidVersionName)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidVersionName, name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %w: %q contains a path separator", ErrValidation, ErrInvalidVersionName, name)
	}
	return nil
}

// ValidateTrainingConfig validates a TrainingConfig according to domain rules.
//
// Validation rules:
//   - BaseModel and DatasetVersion must not be blank
//   - DatasetVersion must be a valid version name
//   - Epochs and BatchSize must be positive
func ValidateTrainingConfig(cfg *TrainingConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: training config is nil", ErrValidation)
	}
	if strings.TrimSpace(cfg.BaseModel) == "" {
		return fmt.Errorf("%w: base_model must be a non-empty string", ErrValidation)
	}
	if strings.TrimSpace(cfg.DatasetVersion) == "" {
		return fmt.Errorf("%w: dataset_version must be a non-empty string", ErrValidation)
	}
	if err := ValidateVersionName(cfg.DatasetVersion); err != nil {
		return err
	}
	if cfg.Epochs < 1 {
		return fmt.Errorf("%w: %w: epochs must be a positive integer", ErrValidation, ErrOutOfRange)
	}
	if cfg.BatchSize < 1 {
		return fmt.Errorf("%w: %w: batch_size must be a positive integer", ErrValidation, ErrOutOfRange)
	}
	return nil
}

// ValidateDatasetRecord validates a catalog entry before it is stored.
func ValidateDatasetRecord(record *DatasetRecord) error {
	if record == nil {
		return fmt.Errorf("%w: dataset record is nil", ErrValidation)
	}
	if err := ValidateVersionName(record.Name); err != nil {
		return err
	}
	if len(record.Hash) != 64 {
		return fmt.Errorf("%w: dataset hash must be 64 hex characters, got %d", ErrValidation, len(record.Hash))
	}
	if record.NumSamples < 0 {
		return fmt.Errorf("%w: %w: num_samples is negative", ErrValidation, ErrOutOfRange)
	}
	return nil
}
