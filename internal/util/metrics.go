package util

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_created_total",
		Help: "Total number of sales created",
	})

	SalesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_failed_total",
		Help: "Total number of failed sale creations",
	}, []string{"reason"})

	InvoicesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoices_created_total",
		Help: "Total number of invoices created",
	})

	InvoicesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoices_failed_total",
		Help: "Total number of failed invoice creations",
	}, []string{"reason"})

	InvoiceStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_status_changes_total",
		Help: "Total number of invoice status changes",
	}, []string{"status"})

	InvoiceNumberFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoice_number_fallbacks_total",
		Help: "Total number of timestamp-based invoice numbers issued",
	})

	LowStockAlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_alerts_total",
		Help: "Total number of low stock alerts raised",
	})

	ExportLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "export_latency_seconds",
		Help:    "Latency of report and document exports",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})

	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exports_total",
		Help: "Total number of report and document exports",
	}, []string{"format"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

// ExportTimer records the latency and count of one export.
type ExportTimer struct {
	format string
	start  time.Time
}

// NewExportTimer starts timing an export in the given format
func NewExportTimer(format string) *ExportTimer {
	return &ExportTimer{format: format, start: time.Now()}
}

// Done observes the elapsed time and counts the export
func (t *ExportTimer) Done() {
	ExportLatency.WithLabelValues(t.format).Observe(time.Since(t.start).Seconds())
	ExportsTotal.WithLabelValues(t.format).Inc()
}
