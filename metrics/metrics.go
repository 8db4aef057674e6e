package metrics

import (
	"gm-rewards/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricNamePrefix = "gm_rewards_"

// Metrics turns committed events into prometheus series
type Metrics struct {
	events      *prometheus.CounterVec
	lastBlock   prometheus.Gauge
	rewardsPaid prometheus.Counter
	donations   prometheus.Counter
}

// New registers the collectors with registry
func New(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: metricNamePrefix + "events_total",
			Help: "Total number of committed events by type",
		}, []string{"type"}),
		lastBlock: factory.NewGauge(prometheus.GaugeOpts{
			Name: metricNamePrefix + "last_block",
			Help: "Number of the last committed block",
		}),
		rewardsPaid: factory.NewCounter(prometheus.CounterOpts{
			Name: metricNamePrefix + "rewards_paid_total",
			Help: "Total base units paid out by reward claims",
		}),
		donations: factory.NewCounter(prometheus.CounterOpts{
			Name: metricNamePrefix + "donations_total",
			Help: "Total base units donated through token upgrades",
		}),
	}
}

// Observe records the events of one committed block
func (m *Metrics) Observe(events []models.Event) {
	for _, e := range events {
		m.events.WithLabelValues(string(e.Type)).Inc()
		m.lastBlock.Set(float64(e.Block))
		switch e.Type {
		case models.EventRewardClaimed:
			m.rewardsPaid.Add(e.Amount.InexactFloat64())
		case models.EventTokenUpgraded:
			m.donations.Add(e.Amount.InexactFloat64())
		}
	}
}
