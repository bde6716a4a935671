package api

import (
	"github.com/arcanaland/spellbook/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

type metrics struct {
	operations *prometheus.CounterVec
}

// newMetrics registers the card metrics with reg. The cards gauge reads the
// store size at scrape time.
func newMetrics(reg prometheus.Registerer, s *store.Store) *metrics {
	m := &metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spellbook",
			Name:      "card_operations_total",
			Help:      "Card operations handled, by operation and outcome.",
		}, []string{"op", "outcome"}),
	}
	cards := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "spellbook",
		Name:      "cards",
		Help:      "Number of cards in the collection.",
	}, func() float64 { return float64(s.Len()) })

	reg.MustRegister(m.operations, cards)
	return m
}

func (m *metrics) observe(op string, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailure
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}
