package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector_ReturnsSingleton(t *testing.T) {
	ResetForTesting()

	first := NewCollector("codekata")
	second := NewCollector("codekata")

	require.NotNil(t, first)
	assert.Same(t, first, second)
}

func TestCollector_CountsBusinessEvents(t *testing.T) {
	ResetForTesting()
	collector := NewCollector("codekata")

	collector.RelationshipsAdded.Inc()
	collector.RelationshipsAdded.Inc()
	collector.RelationshipRejections.WithLabelValues("direct_cycle").Inc()
	collector.CyclesDetected.Inc()
	collector.SuggestionsReviewed.WithLabelValues("accepted").Inc()
	collector.PipelineRuns.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.RelationshipsAdded))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.RelationshipRejections.WithLabelValues("direct_cycle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.CyclesDetected))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.SuggestionsReviewed.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.PipelineRuns))
}

func TestCollector_RegistryServesRegisteredMetrics(t *testing.T) {
	ResetForTesting()
	collector := NewCollector("codekata")

	collector.HTTPRequests.WithLabelValues("GET", "/api/v1/tags", "200").Inc()

	families, err := collector.GetRegistry().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	assert.Contains(t, names, "codekata_http_requests_total")
}
