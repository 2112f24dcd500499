package obs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordingTracksCountersAndHistograms(t *testing.T) {
	r := NewRecording()
	r.IncCounter(MetricDocumentsIndexed, map[string]string{"job_id": "j1"})
	r.IncCounter(MetricDocumentsIndexed, nil)
	r.ObserveHistogram(MetricQueryStageLatency, 12.5, map[string]string{"stage": "rerank"})

	assert.Equal(t, 2, r.Counters[MetricDocumentsIndexed])
	assert.Equal(t, []float64{12.5}, r.Hists[MetricQueryStageLatency])
}

func TestNoopDiscardsEverything(t *testing.T) {
	var n Noop
	assert.NotPanics(t, func() {
		n.IncCounter("x", nil)
		n.ObserveHistogram("y", 1, nil)
	})
}
