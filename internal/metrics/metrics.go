package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// Module provides the service metrics registry.
var Module = fx.Provide(NewRegistry)

// Registry holds order service collectors on a private prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	OrdersCreated     prometheus.Counter
	CreateFailed      *prometheus.CounterVec
	MessagesReceived  prometheus.Counter
	MessagesProcessed prometheus.Counter
	MessagesFailed    prometheus.Counter
	OrdersMissing     prometheus.Counter
	DrainDuration     prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_created_total"})
	createFailed := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "orders_create_failed_total"}, []string{"stage"})
	received := prometheus.NewCounter(prometheus.CounterOpts{Name: "queue_messages_received_total"})
	processed := prometheus.NewCounter(prometheus.CounterOpts{Name: "queue_messages_processed_total"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{Name: "queue_messages_failed_total"})
	missing := prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_missing_total"})
	drain := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "drain_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(created, createFailed, received, processed, failed, missing, drain)
	return &Registry{
		reg:               r,
		OrdersCreated:     created,
		CreateFailed:      createFailed,
		MessagesReceived:  received,
		MessagesProcessed: processed,
		MessagesFailed:    failed,
		OrdersMissing:     missing,
		DrainDuration:     drain,
	}
}

// CreateFailedAt counts a failed create at the given stage (store, serialize, notify, emit).
func (r *Registry) CreateFailedAt(stage string) {
	r.CreateFailed.WithLabelValues(stage).Inc()
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
