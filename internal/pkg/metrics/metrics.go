// Package metrics defines and registers all custom Prometheus metrics for the
// nexus API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto; the /metrics route exposes that registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nexus"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "account_disabled", "throttled" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts bearer token checks.
// Label:
//   - result: "valid", "malformed", "signature_invalid", "expired" or "identity_rejected"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, by result.",
	},
	[]string{"result"},
)

// ── Authorization metrics ─────────────────────────────────────────────────────

// AccessDecisionsTotal counts access evaluator outcomes.
// Labels:
//   - action: the evaluated action (e.g. "upload_document")
//   - decision: "allow" or "deny"
var AccessDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Total number of access decisions, by action and decision.",
	},
	[]string{"action", "decision"},
)

// ── Document metrics ──────────────────────────────────────────────────────────

// DocumentsUploadedTotal counts stored uploads.
// Label:
//   - content_type: the accepted MIME type
var DocumentsUploadedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "documents_uploaded_total",
		Help:      "Total number of documents uploaded, by content type.",
	},
	[]string{"content_type"},
)

// BlobCleanupTotal counts asynchronous blob deletions.
// Label:
//   - result: "ok" or "error"
var BlobCleanupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blob_cleanup_total",
		Help:      "Total number of blob cleanup jobs, by result.",
	},
	[]string{"result"},
)

// BlobCleanupQueueDepth tracks pending keys in each cleanup worker channel.
var BlobCleanupQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "blob_cleanup_queue_depth",
		Help:      "Current number of blob keys pending in each cleanup worker channel.",
	},
	[]string{"worker_id"},
)

// BlobCleanupDuration measures a single blob deletion.
var BlobCleanupDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "blob_cleanup_duration_seconds",
		Help:      "Duration of a single blob deletion.",
		Buckets:   prometheus.DefBuckets,
	},
)
