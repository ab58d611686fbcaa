package core

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateVersionName(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr error
	}{
		{name: "simple", version: "v1", wantErr: nil},
		{name: "with dashes and dots", version: "support-2025.10", wantErr: nil},
		{name: "empty", version: "", wantErr: ErrInvalidVersionName},
		{name: "whitespace", version: "   ", wantErr: ErrInvalidVersionName},
		{name: "dot", version: ".", wantErr: ErrInvalidVersionName},
		{name: "dot dot", version: "..", wantErr: ErrInvalidVersionName},
		{name: "slash", version: "a/b", wantErr: ErrInvalidVersionName},
		{name: "backslash", version: `a\b`, wantErr: ErrInvalidVersionName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVersionName(tt.version)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateVersionName() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateVersionName() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("ValidateVersionName() error = %v, want wrapped %v", err, ErrValidation)
			}
		})
	}
}

func TestValidateTrainingConfig(t *testing.T) {
	valid := func() *TrainingConfig {
		return &TrainingConfig{
			BaseModel:      "tiny-llm",
			DatasetVersion: "v1",
			LearningRate:   0.001,
			Epochs:         3,
			BatchSize:      8,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *TrainingConfig) *TrainingConfig
		wantErr error
	}{
		{
			name:    "valid config",
			mutate:  func(c *TrainingConfig) *TrainingConfig { return c },
			wantErr: nil,
		},
		{
			name:    "nil config",
			mutate:  func(c *TrainingConfig) *TrainingConfig { return nil },
			wantErr: ErrValidation,
		},
		{
			name:    "blank base model",
			mutate:  func(c *TrainingConfig) *TrainingConfig { c.BaseModel = "  "; return c },
			wantErr: ErrValidation,
		},
		{
			name:    "blank dataset version",
			mutate:  func(c *TrainingConfig) *TrainingConfig { c.DatasetVersion = ""; return c },
			wantErr: ErrValidation,
		},
		{
			name:    "dataset version with separator",
			mutate:  func(c *TrainingConfig) *TrainingConfig { c.DatasetVersion = "../v1"; return c },
			wantErr: ErrInvalidVersionName,
		},
		{
			name:    "zero epochs",
			mutate:  func(c *TrainingConfig) *TrainingConfig { c.Epochs = 0; return c },
			wantErr: ErrOutOfRange,
		},
		{
			name:    "negative batch size",
			mutate:  func(c *TrainingConfig) *TrainingConfig { c.BatchSize = -1; return c },
			wantErr: ErrOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTrainingConfig(tt.mutate(valid()))

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateTrainingConfig() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTrainingConfig() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDatasetRecord(t *testing.T) {
	hash := strings.Repeat("a", 64)

	tests := []struct {
		name    string
		record  *DatasetRecord
		wantErr bool
	}{
		{
			name:    "valid record",
			record:  &DatasetRecord{Name: "v1", Hash: hash, NumSamples: 2},
			wantErr: false,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: true,
		},
		{
			name:    "short hash",
			record:  &DatasetRecord{Name: "v1", Hash: "abc"},
			wantErr: true,
		},
		{
			name:    "bad name",
			record:  &DatasetRecord{Name: "a/b", Hash: hash},
			wantErr: true,
		},
		{
			name:    "negative count",
			record:  &DatasetRecord{Name: "v1", Hash: hash, NumSamples: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatasetRecord(tt.record)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDatasetRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("ValidateDatasetRecord() error = %v, want wrapped %v", err, ErrValidation)
			}
		})
	}
}
