// Package ingestion turns raw dataset files into versioned datasets.
//
// Load decodes a raw JSON, CSV, or line-delimited text file into samples.
// The Pipeline type drives a whole build from a YAML config:
//   - Loading the config document
//   - Loading the raw input file
//   - Cleaning and filtering the samples
//   - Writing the dataset version and recording it in the catalog
//
// Each build is synchronous and fails fast. BuildAll runs independent builds
// concurrently on a worker pool, one writer per version directory.
package ingestion
