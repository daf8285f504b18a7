package handler

// Generic HTTP error messages for client responses.
// These messages do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Path and query parameter error messages
	ErrMsgMissingPathParam = "Missing %s path parameter"
	ErrMsgInvalidRaceID    = "Invalid race ID"
	ErrMsgInvalidChallenge = "Invalid challenge ID"
	ErrMsgInvalidLimit     = "Invalid limit parameter"
	ErrMsgInvalidStat      = "Invalid %s parameter"

	// Operation failures
	ErrMsgRaceFailed        = "Failed to run race"
	ErrMsgGetRaceFailed     = "Failed to get race"
	ErrMsgGetBalanceFailed  = "Failed to get balance"
	ErrMsgGetKeysFailed     = "Failed to get keys"
	ErrMsgUseKeyFailed      = "Failed to use key"
	ErrMsgBuyKeyFailed      = "Failed to buy key"
	ErrMsgGetActivityFailed = "Failed to get activity"
)

// Success messages for API responses
const (
	MsgChallengeSent     = "Challenge sent"
	MsgChallengeDeclined = "Challenge declined"
	MsgNoKeyOwned        = "You don't have a key of that type"
)
