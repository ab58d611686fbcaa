// Package training simulates model training runs and keeps a flat-file
// model registry.
//
// Nothing is actually trained. A Trainer validates a training config,
// counts the samples of the referenced dataset version, logs the step count
// a real run would take, and writes the model's metadata.json. The Registry
// appends model metadata to a single JSON document, and Pipeline chains
// train, register, and evaluate.
package training
