package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Race Metrics
var (
	RacesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRacesCompleted,
			Help: HelpTextRacesCompleted,
		},
		[]string{LabelKind, LabelTrack, LabelWinner},
	)

	RaceMarginPercent = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameRaceMarginPercent,
			Help:    HelpTextRaceMarginPercent,
			Buckets: MarginBuckets,
		},
		[]string{LabelKind},
	)

	ChallengesExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameChallengesExpired,
			Help: HelpTextChallengesExpired,
		},
	)
)

// Economy Metrics
var (
	LedgerEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameLedgerEntries,
			Help: HelpTextLedgerEntries,
		},
		[]string{LabelKind},
	)

	CurrencyWagered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCurrencyWagered,
			Help: HelpTextCurrencyWagered,
		},
	)

	CurrencyPaidOut = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCurrencyPaidOut,
			Help: HelpTextCurrencyPaidOut,
		},
	)

	SettlementRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSettlementRejected,
			Help: HelpTextSettlementRejected,
		},
		[]string{LabelReason},
	)
)

// Key Metrics
var (
	KeysDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameKeysDropped,
			Help: HelpTextKeysDropped,
		},
		[]string{LabelKeyType, LabelSource},
	)

	KeysOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameKeysOpened,
			Help: HelpTextKeysOpened,
		},
		[]string{LabelKeyType, LabelRarity},
	)

	KeysPurchased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameKeysPurchased,
			Help: HelpTextKeysPurchased,
		},
		[]string{LabelKeyType},
	)
)

// Stream Metrics
var (
	StreamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameStreamClients,
			Help: HelpTextStreamClients,
		},
	)

	StreamEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameStreamEventsDropped,
			Help: HelpTextStreamEventsDropped,
		},
	)
)
