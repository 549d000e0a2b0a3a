package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Construction results recorded by Metrics.
const (
	ResultOK          = "ok"
	ResultAbsent      = "absent"
	ResultOutOfMemory = "out_of_memory"
	ResultFailed      = "failed"
)

// Metrics counts pipeline constructions and tracks live backing memory.
type Metrics struct {
	constructions  *prometheus.CounterVec
	allocatedBytes prometheus.Gauge
}

// NewMetrics registers the pipeline metrics on reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		constructions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gfxhal",
			Subsystem: "pipeline",
			Name:      "constructions_total",
			Help:      "Pipeline construction attempts by kind and result",
		}, []string{"kind", "result"}),
		allocatedBytes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "gfxhal",
			Subsystem: "pipeline",
			Name:      "allocated_bytes",
			Help:      "Backing memory held by live pipelines",
		}),
	}
}

func (m *Metrics) observe(k Kind, result string) {
	if m == nil {
		return
	}
	m.constructions.WithLabelValues(k.String(), result).Inc()
}

func (m *Metrics) addBytes(n int) {
	if m == nil {
		return
	}
	m.allocatedBytes.Add(float64(n))
}
