package racing

import "time"

// Log messages
const (
	LogMsgSoloRaceCompleted  = "Solo race completed"
	LogMsgPvPRaceCompleted   = "PvP race completed"
	LogMsgShowdownCompleted  = "Car showdown completed"
	LogMsgChallengeIssued    = "Race challenge issued"
	LogMsgChallengeDeclined  = "Race challenge declined"
	LogMsgChallengeCancelled = "Race challenge cancelled"
	LogMsgSettleRetry        = "Race payout failed, retrying"
	LogMsgPayoutDeferred     = "Race payout deferred to reconciliation"
	LogMsgRaceReconciled     = "Unsettled race reconciled"
	LogMsgReconcileFailed    = "Failed to reconcile race"
	LogMsgReconcileCompleted = "Race reconciliation completed"
)

// ErrMsgPayoutDeferred labels payouts left for reconciliation
const ErrMsgPayoutDeferred = "payout deferred"

// Warnings attached to an outcome whose money already moved
const (
	WarnRaceRecordNotSaved = "race record could not be saved"
	WarnKeyDropFailed      = "key drop could not be granted"
	WarnEventNotPublished  = "race completion event could not be published"
	WarnPayoutDeferred     = "payout is delayed and will be credited automatically"
)

// Payout retry and reconciliation
const (
	SettleMaxAttempts  = 3
	SettleRetryDelay   = 100 * time.Millisecond
	ReconcileGrace     = time.Minute
	ReconcileBatchSize = 50
)

// DefaultRecentRacesLimit bounds race history lookups
const DefaultRecentRacesLimit = 10
