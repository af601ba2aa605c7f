/*
Package metrics exposes the prometheus instrumentation of the service.

A single Set owns every collector. It is registered once at startup and
handed to the components that emit, so collectors are never looked up by
name at runtime.
*/
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iov-one/migrate"
)

// Set bundles all collectors of the service.
type Set struct {
	AccountsMigrated *prometheus.CounterVec
	AmountMigrated   prometheus.Counter
	Errors           *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	WalletBalance    prometheus.Gauge
	ChannelsTotal    prometheus.Gauge
	ChannelsFree     prometheus.Gauge
}

// NewSet creates all collectors and registers them with reg.
func NewSet(reg prometheus.Registerer) *Set {
	s := &Set{
		AccountsMigrated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "migrate",
			Name:      "accounts_migrated_total",
			Help:      "Completed migrations by destination and balance kind.",
		}, []string{"pre_existing", "zero"}),
		AmountMigrated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "migrate",
			Name:      "amount_migrated_tokens",
			Help:      "Sum of migrated balances in whole tokens.",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "migrate",
			Name:      "errors_total",
			Help:      "Failed requests by error code.",
		}, []string{"code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "migrate",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		WalletBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "migrate",
			Name:      "wallet_balance_tokens",
			Help:      "Native balance of the funding account.",
		}),
		ChannelsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "migrate",
			Name:      "channels_total",
			Help:      "Size of the submission channel pool.",
		}),
		ChannelsFree: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "migrate",
			Name:      "channels_free",
			Help:      "Channels currently not submitting.",
		}),
	}
	reg.MustRegister(
		s.AccountsMigrated,
		s.AmountMigrated,
		s.Errors,
		s.RequestDuration,
		s.WalletBalance,
		s.ChannelsTotal,
		s.ChannelsFree,
	)
	return s
}

// MigrationCompleted implements migration.Recorder.
func (s *Set) MigrationCompleted(preExisting, zero bool, amount migrate.Amount) {
	s.AccountsMigrated.WithLabelValues(label(preExisting), label(zero)).Inc()
	s.AmountMigrated.Add(amount.Tokens())
}

// ObserveStatus records the funding account snapshot obtained from a
// status poll.
func (s *Set) ObserveStatus(st *migrate.LedgerStatus) {
	s.WalletBalance.Set(st.Balance.Tokens())
	s.ChannelsTotal.Set(float64(st.TotalChannels))
	s.ChannelsFree.Set(float64(st.FreeChannels))
}

func label(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
