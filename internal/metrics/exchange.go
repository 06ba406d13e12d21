package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Exchange and token-store Prometheus metrics. Defined in a standalone
// package to avoid import cycles between the adapter and HTTP packages.

var (
	ExchangeAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "token_exchange_attempts_total",
		Help: "Intentos de token exchange por resultado (success|error code)",
	}, []string{"outcome"})

	ExchangeLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "token_exchange_latency_ms",
		Help:    "Latencia del grant handler en milisegundos",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	StoreOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "token_store_ops_total",
		Help: "Operaciones del persistence adapter por op y kind",
	}, []string{"op", "kind"})

	SweepDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "token_store_sweep_deleted_total",
		Help: "Registros vencidos eliminados por el sweep",
	})
)

// Register registers the exchange metrics on the given registry (or default if nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{ExchangeAttempts, ExchangeLatency, StoreOps, SweepDeleted} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
