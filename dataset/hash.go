package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"

	"github.com/poiesic/datamill/core"
)

// ComputeHash returns the lowercase hex SHA-256 of the canonical records of
// samples, in order. An empty sequence hashes the empty input.
func ComputeHash(samples []core.Sample) string {
	h := sha256.New()
	var buf []byte
	for _, s := range samples {
		buf = AppendRecord(buf[:0], s)
		h.Write(buf)
	}
	return sum(h)
}

func sum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
