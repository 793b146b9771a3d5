package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("notify:chat_message").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("notify:chat_message").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("notify:chat_message", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("notify:chat_message", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("notify:chat_message")))
}

func TestNilMetricsTrackerIsNoop(t *testing.T) {
	var m *Metrics
	assert.NoError(t, m.Track("x").End(nil))
}
