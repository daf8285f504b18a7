package postgres

// Error Messages - Ledger Operations
const (
	ErrMsgFailedToGetBalance             = "failed to get balance"
	ErrMsgFailedToBeginLedgerTransaction = "failed to begin ledger transaction"
	ErrMsgFailedToLockBalance            = "failed to lock balance"
	ErrMsgFailedToAdjustBalance          = "failed to adjust balance"
	ErrMsgFailedToInsertTransaction      = "failed to insert transaction"
	ErrMsgFailedToClaimRacePhase         = "failed to claim race phase"
)

// Error Messages - Race Operations
const (
	ErrMsgFailedToInsertRace           = "failed to insert race"
	ErrMsgFailedToUpdateRace           = "failed to update race"
	ErrMsgFailedToQueryRace            = "failed to query race"
	ErrMsgFailedToScanRace             = "failed to scan race"
	ErrMsgFailedToQueryRaces           = "failed to query races"
	ErrMsgFailedToScanRaces            = "failed to scan races"
	ErrMsgFailedToQueryUnsettledRaces  = "failed to query unsettled races"
	ErrMsgFailedToMarshalChallengerCar = "failed to marshal challenger car"
	ErrMsgFailedToMarshalOpponentCar   = "failed to marshal opponent car"
	ErrMsgFailedToMarshalRaceResult    = "failed to marshal race result"
	ErrMsgFailedToDecodeChallengerCar  = "failed to decode challenger car"
	ErrMsgFailedToDecodeOpponentCar    = "failed to decode opponent car"
	ErrMsgFailedToDecodeRaceResult     = "failed to decode race result"
)

// Error Messages - Key Inventory Operations
const (
	ErrMsgFailedToQueryKeys           = "failed to query keys"
	ErrMsgFailedToScanKeys            = "failed to scan keys"
	ErrMsgFailedToBeginKeyTransaction = "failed to begin key transaction"
	ErrMsgFailedToCreateKeyEntry      = "failed to create key entry"
	ErrMsgFailedToReadKeyEntry        = "failed to read key entry"
	ErrMsgFailedToScanKeyEntry        = "failed to scan key entry"
	ErrMsgFailedToIncrementKeyEntry   = "failed to increment key entry"
	ErrMsgFailedToConsumeKey          = "failed to consume key"
)

// Error Messages - Activity Feed Operations
const (
	ErrMsgFailedToQueryActivity         = "failed to query activity"
	ErrMsgFailedToCleanupActivity       = "failed to cleanup activity"
	ErrMsgFailedToDecodeActivityDetails = "failed to decode activity details"
)

// Error Messages - Shared Helpers
const (
	ErrMsgFailedToMarshalActivityDetails = "failed to marshal activity details"
	ErrMsgFailedToInsertActivity         = "failed to insert activity"
	ErrMsgFailedToEnsureAccount          = "failed to ensure account"
)
