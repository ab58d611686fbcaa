package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for catalog entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Sample is one input/output text pair flowing through the dataset pipeline.
// Samples are values: later stages select or drop them but never modify fields.
type Sample struct {
	ID     string `json:"id"`
	Input  string `json:"input"`
	Output string `json:"output"`
	Source string `json:"source"`
}

// SampleID returns the identifier assigned to the sample at position index
// of a file ingested under source.
func SampleID(source string, index int) string {
	return source + "_" + strconv.Itoa(index)
}

// DatasetMetadata is the metadata record written next to a dataset version.
type DatasetMetadata struct {
	DatasetVersion string         `json:"dataset_version"`
	NumSamples     int            `json:"num_samples"`
	Config         map[string]any `json:"config"`
	DatasetHash    string         `json:"dataset_hash"`
}

// DatasetRecord is a catalog entry describing a written dataset version.
type DatasetRecord struct {
	Id         ID
	Name       string
	Path       string
	Hash       string
	Source     string
	NumSamples int
	CreatedAt  time.Time
}

// TrainingConfig describes a simulated training run.
type TrainingConfig struct {
	BaseModel      string  `json:"base_model"`
	DatasetVersion string  `json:"dataset_version"`
	LearningRate   float64 `json:"learning_rate"`
	Epochs         int     `json:"epochs"`
	BatchSize      int     `json:"batch_size"`
}

// ModelMetadata is the metadata record of a trained model version.
// It is also the entry type stored in the model registry.
type ModelMetadata struct {
	ModelVersion       string         `json:"model_version"`
	BaseModel          string         `json:"base_model"`
	DatasetVersion     string         `json:"dataset_version"`
	DatasetHash        string         `json:"dataset_hash,omitempty"`
	TrainingConfig     TrainingConfig `json:"training_config"`
	NumTrainingSamples int            `json:"num_training_samples"`
	RunID              string         `json:"run_id,omitempty"`
	TrainedAt          time.Time      `json:"trained_at"`
}

// Metrics holds simulated evaluation scores.
type Metrics struct {
	QualityScore    float64 `json:"quality_score"`
	LatencyMs       int     `json:"latency_ms"`
	CostPer1kTokens float64 `json:"cost_per_1k_tokens"`
}

// Evaluation is the record produced by evaluating a model version.
type Evaluation struct {
	ModelVersion   string  `json:"model_version"`
	DatasetVersion string  `json:"dataset_version"`
	Metrics        Metrics `json:"metrics"`
}
