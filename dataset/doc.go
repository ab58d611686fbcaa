// Package dataset writes and reads content-addressed dataset versions.
//
// A version is a directory holding two files:
//
//	data.jsonl      one canonical JSON record per sample, in order
//	metadata.json   {dataset_version, num_samples, config, dataset_hash}
//
// The dataset hash is the SHA-256 of data.jsonl's exact bytes, so it depends
// only on the ordered sample sequence. CreateVersion stages both files in a
// temporary sibling directory and swaps it into place, replacing any
// previous version of the same name as a whole.
package dataset
