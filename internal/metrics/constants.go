package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Race metric names
const (
	MetricNameRacesCompleted     = "races_completed_total"
	MetricNameRaceMarginPercent  = "race_margin_percent"
	MetricNameLedgerEntries      = "ledger_entries_total"
	MetricNameCurrencyWagered    = "currency_wagered_total"
	MetricNameCurrencyPaidOut    = "currency_paid_out_total"
	MetricNameSettlementRejected = "settlement_rejected_total"
	MetricNameKeysDropped        = "keys_dropped_total"
	MetricNameKeysOpened         = "keys_opened_total"
	MetricNameKeysPurchased      = "keys_purchased_total"
	MetricNameChallengesExpired  = "challenges_expired_total"
)

// Stream metric names
const (
	MetricNameStreamClients       = "stream_clients"
	MetricNameStreamEventsDropped = "stream_events_dropped_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Race metric help text
const (
	HelpTextRacesCompleted     = "Total number of races resolved and settled"
	HelpTextRaceMarginPercent  = "Winning margin as a percentage of the mean score"
	HelpTextLedgerEntries      = "Total number of ledger entries applied"
	HelpTextCurrencyWagered    = "Total currency staked on races"
	HelpTextCurrencyPaidOut    = "Total currency paid out by race settlement"
	HelpTextSettlementRejected = "Total number of settlement calls rejected"
	HelpTextKeysDropped        = "Total number of keys awarded by races"
	HelpTextKeysOpened         = "Total number of keys opened"
	HelpTextKeysPurchased      = "Total number of keys bought with currency"
	HelpTextChallengesExpired  = "Total number of challenges that expired unanswered"

	HelpTextStreamClients       = "Current number of connected event stream clients"
	HelpTextStreamEventsDropped = "Total number of stream events dropped because a buffer was full"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelType    = "type"
	LabelKind    = "kind"
	LabelTrack   = "track"
	LabelWinner  = "winner"
	LabelKeyType = "key_type"
	LabelSource  = "source"
	LabelRarity  = "rarity"
	LabelReason  = "reason"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// MarginBuckets line up with the margin descriptor thresholds
var MarginBuckets = []float64{1, 5, 10, 15, 20, 30, 50, 100}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgEventPayloadDecode = "Event payload could not be decoded"
	LogMsgMetricsRecorded    = "Metrics recorded for event"
)

// UnmatchedRoute labels requests that did not hit a registered route
const UnmatchedRoute = "unmatched"
