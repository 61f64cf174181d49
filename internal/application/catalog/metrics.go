package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// createdTotal counts artworks created by auto-cataloging.
	createdTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "artscan_catalog_created_total",
		Help: "Total artworks created by the auto-cataloging coordinator",
	})

	// requeryWinsTotal counts races resolved by returning a concurrent winner.
	requeryWinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "artscan_catalog_requery_wins_total",
		Help: "Total get-or-create calls resolved to a concurrently created artwork",
	})

	// conflictsTotal counts store-level insert conflicts absorbed locally.
	conflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "artscan_catalog_conflicts_total",
		Help: "Total store insert conflicts absorbed by re-query",
	})
)
