// Package audit re-verifies every dataset version under a datasets
// directory and optionally brings the dataset catalog back in line with
// what is on disk.
//
// Versions are visited in name order and in batches. Each version's
// data.jsonl is rehashed and compared with its metadata.json; mismatches
// and unreadable versions are reported per version rather than aborting
// the audit.
package audit
