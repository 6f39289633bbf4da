package sandbox

import (
	"github.com/annel0/voxel-sandbox/internal/interaction"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics счётчики операций песочницы.
//
// * sandbox_block_operations_total{op,result}: counter
// * sandbox_blocks_occupied: gauge
// * sandbox_gestures_total{outcome}: counter
type Metrics struct {
	operations *prometheus.CounterVec
	occupied   prometheus.Gauge
	gestures   *prometheus.CounterVec
}

// NewMetrics создаёт метрики и регистрирует их в reg; nil: глобальный регистр
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sandbox",
			Name:      "block_operations_total",
			Help:      "Операции над картой занятости по результату.",
		}, []string{"op", "result"}),
		occupied: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sandbox",
			Name:      "blocks_occupied",
			Help:      "Количество занятых ячеек.",
		}),
		gestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sandbox",
			Name:      "gestures_total",
			Help:      "Итоги жестов указателя.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.operations, m.occupied, m.gestures)
	return m
}

// observe учитывает итог события; nil-приёмник ничего не делает
func (m *Metrics) observe(res interaction.Result, occupied int) {
	if m == nil {
		return
	}
	switch res.Outcome {
	case interaction.OutcomePlace:
		m.operations.WithLabelValues("place", res.Place.String()).Inc()
	case interaction.OutcomeRemove:
		m.operations.WithLabelValues("remove", res.Remove.String()).Inc()
	case interaction.OutcomeReset:
		m.operations.WithLabelValues("reset", "CLEARED").Inc()
	case interaction.OutcomeNone:
		// нажатие без итога не считаем
		return
	}
	m.gestures.WithLabelValues(res.Outcome.String()).Inc()
	m.occupied.Set(float64(occupied))
}
