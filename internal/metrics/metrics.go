package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelMethod = "method"
	LabelRoute  = "route"
	LabelStatus = "status"
	LabelMode   = "mode"
	LabelResult = "result"
	LabelEntity = "entity"
	LabelAction = "action"
	LabelFormat = "format"
)

// HTTP
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nestory_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelRoute, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nestory_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelRoute},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nestory_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// Backup
var (
	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nestory_backup_imports_total",
			Help: "Backup imports by mode and outcome",
		},
		[]string{LabelMode, LabelResult},
	)

	ImportWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nestory_backup_import_warnings_total",
			Help: "Warnings recorded while reconciling backups",
		},
	)

	ImportRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nestory_backup_import_records_total",
			Help: "Records touched by backup imports",
		},
		[]string{LabelEntity, LabelAction},
	)

	ExportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nestory_backup_exports_total",
			Help: "Backup exports written",
		},
	)
)

// Receipts and reports
var (
	ReceiptScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nestory_receipt_scans_total",
			Help: "Receipt OCR scans by outcome",
		},
		[]string{LabelResult},
	)

	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nestory_reports_total",
			Help: "Inventory reports rendered by format",
		},
		[]string{LabelFormat},
	)
)
