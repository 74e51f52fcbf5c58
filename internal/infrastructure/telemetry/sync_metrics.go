package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/ordersync/backend/internal/domain/integration"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
	OutcomePanic   = "panic"
)

// Error kind label values
const (
	KindRemote      = "remote"
	KindPersistence = "persistence"
	KindNotFound    = "not_found"
	KindCanceled    = "canceled"
	KindOther       = "other"
)

// SyncMetrics records credential passes and scheduler ticks
type SyncMetrics struct {
	ordersCreated      *prometheus.CounterVec
	ordersSkipped      *prometheus.CounterVec
	itemFailures       *prometheus.CounterVec
	credentialSyncs    *prometheus.CounterVec
	credentialDuration *prometheus.HistogramVec
	ticks              *prometheus.CounterVec
	tickDuration       prometheus.Histogram
	syncing            prometheus.Gauge
	lastSuccessfulTick prometheus.Gauge
}

// NewSyncMetrics creates the sync metrics and registers them on reg
func NewSyncMetrics(reg *Registry) (*SyncMetrics, error) {
	ns := reg.Namespace()
	m := &SyncMetrics{
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "orders_created_total",
			Help:      "Orders inserted by sync passes.",
		}, []string{"merchant_id"}),
		ordersSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "orders_skipped_total",
			Help:      "Fetched orders that were already stored.",
		}, []string{"merchant_id"}),
		itemFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "order_item_failures_total",
			Help:      "Line items whose insert failed.",
		}, []string{"merchant_id"}),
		credentialSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "credential_syncs_total",
			Help:      "Credential passes by outcome and error kind.",
		}, []string{"outcome", "kind"}),
		credentialDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "credential_sync_duration_seconds",
			Help:      "Duration of one credential pass.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"outcome"}),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "scheduler_ticks_total",
			Help:      "Scheduler ticks by outcome.",
		}, []string{"outcome"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "scheduler_tick_duration_seconds",
			Help:      "Duration of a scheduled pass over every active credential.",
			Buckets:   []float64{1, 5, 15, 30, 60, 300, 900, 1800},
		}),
		syncing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "scheduler_syncing",
			Help:      "1 while a scheduled pass is running.",
		}),
		lastSuccessfulTick: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "scheduler_last_success_timestamp_seconds",
			Help:      "Unix time of the last scheduled pass that completed without error.",
		}),
	}

	if err := reg.Register(
		m.ordersCreated, m.ordersSkipped, m.itemFailures,
		m.credentialSyncs, m.credentialDuration,
		m.ticks, m.tickDuration, m.syncing, m.lastSuccessfulTick,
	); err != nil {
		return nil, err
	}
	return m, nil
}

// OnCredentialSynced records one credential pass
func (m *SyncMetrics) OnCredentialSynced(_ context.Context, cred *integration.Credential, result *integration.SyncResult, err error) {
	merchant := cred.MerchantID.String()
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.credentialSyncs.WithLabelValues(outcome, ErrorKind(err)).Inc()

	if result == nil {
		return
	}
	m.ordersCreated.WithLabelValues(merchant).Add(float64(result.CreatedCount))
	m.ordersSkipped.WithLabelValues(merchant).Add(float64(result.SkippedCount))
	m.itemFailures.WithLabelValues(merchant).Add(float64(result.FailedItemCount))
	if !result.CompletedAt.IsZero() {
		m.credentialDuration.WithLabelValues(outcome).Observe(result.Duration().Seconds())
	}
}

// TickStarted marks a scheduled pass as running
func (m *SyncMetrics) TickStarted() {
	m.syncing.Set(1)
}

// TickSkipped counts a tick dropped because a pass was still running
func (m *SyncMetrics) TickSkipped() {
	m.ticks.WithLabelValues(OutcomeSkipped).Inc()
}

// TickFinished records a finished pass. panicked takes precedence over err.
func (m *SyncMetrics) TickFinished(at time.Time, duration time.Duration, err error, panicked bool) {
	m.syncing.Set(0)
	m.tickDuration.Observe(duration.Seconds())

	switch {
	case panicked:
		m.ticks.WithLabelValues(OutcomePanic).Inc()
	case err != nil:
		m.ticks.WithLabelValues(OutcomeFailure).Inc()
	default:
		m.ticks.WithLabelValues(OutcomeSuccess).Inc()
		m.lastSuccessfulTick.Set(float64(at.Unix()))
	}
}

// ErrorKind classifies err into a low-cardinality label value; nil yields ""
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, integration.ErrRemoteFetch):
		return KindRemote
	case errors.Is(err, integration.ErrPersistence):
		return KindPersistence
	case errors.Is(err, integration.ErrNotFound):
		return KindNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindOther
	}
}
