package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.StoreRead("elpp_signals", true)
		m.StoreWrite("elpp_signals")
		m.Sample("ok")
		m.MonteCarloDone(time.Second)
		m.StageDone("prepare", "ok")
	})
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.StoreRead("elpp_signals", true)
	m.StoreRead("elpp_signals", false)
	m.StoreRead("elpp_signals", false)
	m.Sample("ok")
	m.StageDone("prepare", "ok")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeReads.WithLabelValues("elpp_signals", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.storeReads.WithLabelValues("elpp_signals", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.samples.WithLabelValues("ok")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
