// Package metrics defines and registers all custom Prometheus metrics for the
// submission API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dental_scribe"

// ── Submission metrics ────────────────────────────────────────────────────────

// SubmissionsCreatedTotal counts submissions created by patients.
var SubmissionsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_created_total",
		Help:      "Total number of submissions created.",
	},
)

// SubmissionsReviewedTotal counts admin reviews.
// Label:
//   - with_report: "true" when a PDF report was attached
var SubmissionsReviewedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_reviewed_total",
		Help:      "Total number of submission reviews, by whether a report was attached.",
	},
	[]string{"with_report"},
)

// ── Blob storage metrics ──────────────────────────────────────────────────────

// BlobUploadsTotal counts artifact uploads.
// Labels:
//   - driver: "s3", "local" or "memory"
//   - result: "ok" or "error"
var BlobUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blob_uploads_total",
		Help:      "Total number of artifact uploads, by driver and result.",
	},
	[]string{"driver", "result"},
)

// BlobUploadDuration measures how long a single upload takes.
var BlobUploadDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "blob_upload_duration_seconds",
		Help:      "Duration of artifact uploads.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"driver"},
)

// BlobUploadBytes observes the size of uploaded artifacts.
var BlobUploadBytes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "blob_upload_bytes",
		Help:      "Size of uploaded artifacts in bytes.",
		Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 8), // 16KiB .. 256MiB
	},
)

// ── Audit trail metrics ───────────────────────────────────────────────────────

// AuditEventsTotal counts audit events by outcome.
// Label:
//   - result: "recorded", "failed" or "dropped" (queue full)
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of submission audit events, by outcome.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditRecordDuration measures dequeue-to-persistence time of one event.
var AuditRecordDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_record_duration_seconds",
		Help:      "Duration of audit event recording from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "invalid_credentials" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
