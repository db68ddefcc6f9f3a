package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_mutations_total",
			Help: "Total number of optimistic mutations by final state",
		},
		[]string{"operation", "outcome"},
	)

	pollerTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_poller_ticks_total",
			Help: "Total number of freshness poller ticks",
		},
		[]string{"result"},
	)

	pageLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_page_loads_total",
			Help: "Total number of feed page loads",
		},
		[]string{"kind", "outcome"},
	)
)

const (
	outcomeConfirmed  = "confirmed"
	outcomeRolledBack = "rolled_back"
	outcomeDiscarded  = "discarded"

	tickChanged   = "changed"
	tickUnchanged = "unchanged"
	tickError     = "error"
	tickDiscarded = "discarded"
)
