package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// WalletOperations counts engine operations by name and outcome.
	WalletOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wallet",
		Name:      "operations_total",
		Help:      "Wallet ledger engine operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	// DivergentWallets reports how many wallets the last reconciliation sweep
	// found out of step with their ledger.
	DivergentWallets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wallet",
		Name:      "reconcile_divergent_wallets",
		Help:      "Wallets whose balance disagrees with their ledger entries.",
	})

	// ReconcileSweeps counts reconciliation sweeps by result.
	ReconcileSweeps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wallet",
		Name:      "reconcile_sweeps_total",
		Help:      "Reconciliation sweeps by result.",
	}, []string{"result"})
)

// Handler exposes the default Prometheus registry over HTTP.
func Handler() http.Handler {
	return promhttp.Handler()
}
