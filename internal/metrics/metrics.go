// Package metrics holds the engine's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostedTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerline_transactions_posted_total",
		Help: "Transactions posted against facilities, by kind.",
	}, []string{"kind"})

	ReversedTransactions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledgerline_transactions_reversed_total",
		Help: "Transactions reversed, by deallocation or reconciliation.",
	})

	OverpaymentClamps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledgerline_overpayment_clamps_total",
		Help: "Paydowns clamped at a non-revolving facility's committed total.",
	})

	AllocationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledgerline_allocation_failures_total",
		Help: "Payment allocations that failed at the posting path.",
	})

	OrphansRepaired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledgerline_orphans_repaired_total",
		Help: "Orphaned allocation transactions reversed by reconciliation.",
	})
)
