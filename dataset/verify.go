package dataset

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Report compares a version's data.jsonl against its metadata.
type Report struct {
	Version      string `json:"dataset_version"`
	Path         string `json:"path"`
	ExpectedHash string `json:"expected_hash"`
	ActualHash   string `json:"actual_hash"`
	Expected     int    `json:"expected_samples"`
	Actual       int    `json:"actual_samples"`
	HashMatches  bool   `json:"hash_matches"`
	CountMatches bool   `json:"count_matches"`
}

// OK reports whether both the hash and the sample count match.
func (r *Report) OK() bool {
	return r.HashMatches && r.CountMatches
}

// Err returns ErrHashMismatch when the report is not OK.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %s (hash %t, count %d/%d)", ErrHashMismatch, r.Version, r.HashMatches, r.Actual, r.Expected)
}

// Verify rehashes data.jsonl byte for byte and compares the result with the
// recorded metadata. A mismatch is reported, not returned as an error.
func Verify(dir string) (*Report, error) {
	meta, err := ReadMetadata(dir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, DataFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, notFound(path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	actual, err := CountSamples(dir)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Version:      meta.DatasetVersion,
		Path:         dir,
		ExpectedHash: meta.DatasetHash,
		ActualHash:   sum(h),
		Expected:     meta.NumSamples,
		Actual:       actual,
	}
	r.HashMatches = r.ActualHash == r.ExpectedHash
	r.CountMatches = r.Actual == r.Expected
	return r, nil
}
