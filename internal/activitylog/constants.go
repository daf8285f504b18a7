package activitylog

// Default limits for feed queries
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Detail keys written into feed entries
const (
	DetailKeyKind        = "kind"
	DetailKeyTrack       = "track"
	DetailKeyBet         = "bet"
	DetailKeyWinner      = "winner"
	DetailKeyMargin      = "margin"
	DetailKeyOpponentID  = "opponentId"
	DetailKeyChallengeID = "challengeId"
)

// Log messages - service events
const (
	LogMsgDecodeFailed     = "Failed to decode event payload, skipping log"
	LogMsgFailedToLogEvent = "Failed to record activity"
	LogMsgActivityRecorded = "Activity recorded"
	LogMsgUnknownRaceKind  = "Race completed with unknown kind, skipping log"
)

// Log messages - cleanup job
const (
	LogMsgCleanupJobStarting  = "Starting activity log cleanup job"
	LogMsgCleanupJobFailed    = "Activity log cleanup failed"
	LogMsgCleanupJobCompleted = "Activity log cleanup completed"
)

// Log field keys - structured logging fields
const (
	LogFieldType          = "type"
	LogFieldUserID        = "user_id"
	LogFieldError         = "error"
	LogFieldRetentionDays = "retentionDays"
	LogFieldDuration      = "duration"
	LogFieldDeletedCount  = "deletedCount"
)
