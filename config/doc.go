// Package config loads datamill's YAML documents and workspace settings.
//
// Dataset and training configs are untyped mappings: LoadDocument parses the
// file with koanf and returns a Document, whose typed accessors report
// missing keys and wrong types as core.ErrValidation. Workspace settings
// (artifact locations, worker counts) come from LoadSettings, which layers
// DATAMILL_* environment variables over an optional YAML file.
package config
