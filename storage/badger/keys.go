package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/datamill/core"
)

// Key prefixes for different data types
const (
	datasetRecordPrefix = "dsrec"
	datasetHashPrefix   = "dshash"
)

// makeDatasetRecordKey generates a key for a dataset record by ID.
func makeDatasetRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", datasetRecordPrefix, id))
}

// makeDatasetHashKey generates a composite key for the hash index.
// Format: prefix:hash:id
func makeDatasetHashKey(hash string, id core.ID) []byte {
	prefix := makePartialDatasetHashKey(hash)
	buf := make([]byte, len(prefix)+8) // 8 bytes for ID
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDatasetHashKey generates a partial key for hash lookups.
// Format: prefix:hash:
func makePartialDatasetHashKey(hash string) []byte {
	return []byte(datasetHashPrefix + ":" + hash + ":")
}
