// Package evaluation produces deterministic, simulated scores for trained
// model versions.
//
// No model is run. Metrics are derived from the SHA-256 of
// "<model_version>:<dataset_version>", so the same pair always scores the
// same, and are written to <evaluations_dir>/<model_version>/evaluation.json.
package evaluation
