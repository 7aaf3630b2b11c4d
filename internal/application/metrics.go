package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	oauthCompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seoforge_oauth_completions_total",
			Help: "Completed OAuth handshakes by outcome.",
		},
		[]string{"outcome"},
	)
	pagesSyncedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seoforge_pages_synced_total",
			Help: "Catalog pages upserted during sync, by type.",
		},
		[]string{"type"},
	)
	contentVersionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seoforge_content_versions_created_total",
			Help: "Content versions created.",
		},
	)
	publishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seoforge_publishes_total",
			Help: "Publish attempts by outcome.",
		},
		[]string{"outcome"},
	)
	keywordsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seoforge_keywords_created_total",
			Help: "Keyword rows created by seeding.",
		},
	)
)
