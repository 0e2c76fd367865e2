package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CreditTransactions counts committed ledger mutations by kind.
	CreditTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streampilot_credit_transactions_total",
		Help: "Committed ledger transactions by kind.",
	}, []string{"kind"})

	// LedgerRejections counts debit attempts rejected before any mutation.
	LedgerRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streampilot_ledger_rejections_total",
		Help: "Rejected ledger operations by reason.",
	}, []string{"reason"})

	// RateLimitRejections counts admission denials per route group.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streampilot_rate_limit_rejections_total",
		Help: "Requests denied by the admission controller, per route group.",
	}, []string{"group"})

	// CounterStoreFallbacks counts calls served by the local counter because
	// the shared store was unreachable.
	CounterStoreFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streampilot_counter_store_fallbacks_total",
		Help: "Rate limit checks that fell back to the in-process counter.",
	})

	// WebhookDeliveries counts delivery attempts by outcome.
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streampilot_webhook_deliveries_total",
		Help: "Webhook delivery attempts by outcome (delivered, failed).",
	}, []string{"outcome"})

	// WebhookQueueDrops counts events rejected because the dispatch queue was full.
	WebhookQueueDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streampilot_webhook_queue_drops_total",
		Help: "Webhook events dropped because the dispatch queue was full.",
	})
)

// Serve exposes /metrics on its own listener so scraping stays off the API
// port. Runs until the process exits.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("metrics listener stopped: %v", err)
	}
}
