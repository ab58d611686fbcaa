package evaluation

import (
	"fmt"
	"testing"

	"github.com/poiesic/datamill/core"
	"github.com/stretchr/testify/assert"
)

func TestSimulateMetrics_Golden(t *testing.T) {
	tests := []struct {
		model   string
		dataset string
		want    core.Metrics
	}{
		{"m1", "v1", core.Metrics{QualityScore: 0.5672, LatencyMs: 59, CostPer1kTokens: 0.0162}},
		{"model-a", "support_v2", core.Metrics{QualityScore: 0.6182, LatencyMs: 62, CostPer1kTokens: 0.0151}},
		{"m1", "", core.Metrics{QualityScore: 0.8331, LatencyMs: 99, CostPer1kTokens: 0.0169}},
	}

	for _, tt := range tests {
		t.Run(tt.model+":"+tt.dataset, func(t *testing.T) {
			assert.Equal(t, tt.want, SimulateMetrics(tt.model, tt.dataset))
		})
	}
}

func TestSimulateMetrics_Ranges(t *testing.T) {
	for i := 0; i < 200; i++ {
		m := SimulateMetrics(fmt.Sprintf("model-%d", i), "v1")

		assert.GreaterOrEqual(t, m.QualityScore, 0.5)
		assert.Less(t, m.QualityScore, 1.0)
		assert.GreaterOrEqual(t, m.LatencyMs, 20)
		assert.Less(t, m.LatencyMs, 100)
		assert.GreaterOrEqual(t, m.CostPer1kTokens, 0.01)
		assert.LessOrEqual(t, m.CostPer1kTokens, 0.0189)
	}
}

func TestSimulateMetrics_Deterministic(t *testing.T) {
	assert.Equal(t, SimulateMetrics("a", "b"), SimulateMetrics("a", "b"))
	assert.NotEqual(t, SimulateMetrics("a", "b"), SimulateMetrics("b", "a"))
}
