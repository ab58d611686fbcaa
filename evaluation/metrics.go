package evaluation

import (
	"crypto/sha256"
	"encoding/binary"
	"math"

	"github.com/poiesic/datamill/core"
)

// SimulateMetrics derives metrics from the model and dataset version names.
//
//	quality_score      = 0.5 + (h[0:4] mod 5000) / 10000     in [0.5, 1.0)
//	latency_ms         = 20 + h[4:8] mod 80                  in [20, 100)
//	cost_per_1k_tokens = 0.01 + (h[8:12] mod 90) / 10000     in [0.01, 0.019]
//
// where h[i:j] is a big-endian word of the SHA-256 digest. Scores are
// rounded to four decimal places.
func SimulateMetrics(modelVersion, datasetVersion string) core.Metrics {
	h := sha256.Sum256([]byte(modelVersion + ":" + datasetVersion))
	a := binary.BigEndian.Uint32(h[0:4])
	b := binary.BigEndian.Uint32(h[4:8])
	c := binary.BigEndian.Uint32(h[8:12])

	return core.Metrics{
		QualityScore:    round4(0.5 + float64(a%5000)/10000),
		LatencyMs:       20 + int(b%80),
		CostPer1kTokens: round4(0.01 + float64(c%90)/10000),
	}
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
