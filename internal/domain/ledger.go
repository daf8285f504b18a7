package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultStartingBalance is credited to an account the first time it is seen
const DefaultStartingBalance int64 = 1000

// LedgerKind tags a balance mutation
type LedgerKind string

const (
	LedgerRaceBet        LedgerKind = "race_bet"
	LedgerRaceWin        LedgerKind = "race_win"
	LedgerSoloRaceBet    LedgerKind = "solo_race_bet"
	LedgerSoloRaceWin    LedgerKind = "solo_race_win"
	LedgerSoloRaceRefund LedgerKind = "solo_race_refund"
	LedgerKeyPurchase    LedgerKind = "key_purchase"
)

// IsBet reports whether the kind debits a stake
func (k LedgerKind) IsBet() bool {
	return k == LedgerRaceBet || k == LedgerSoloRaceBet
}

// LedgerEntry is one signed balance mutation tied to a race
type LedgerEntry struct {
	AccountID   string     `json:"account_id"`
	Amount      int64      `json:"amount"`
	Kind        LedgerKind `json:"kind"`
	RaceID      uuid.UUID  `json:"race_id"`
	Description string     `json:"description"`
}

// Account holds a currency balance
type Account struct {
	ID        string    `json:"id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// Transaction is the financial audit row written for every ledger entry
type Transaction struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"user_id"`
	Type        LedgerKind `json:"type"`
	Amount      int64      `json:"amount"`
	Description string     `json:"description"`
	RelatedID   string     `json:"related_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TransactionFromEntry builds the audit row for a ledger entry
func TransactionFromEntry(e LedgerEntry) Transaction {
	return Transaction{
		UserID:      e.AccountID,
		Type:        e.Kind,
		Amount:      e.Amount,
		Description: e.Description,
		RelatedID:   e.RaceID.String(),
	}
}

// Activity log types
const (
	ActivityKeyEarned         = "KEY_EARNED"
	ActivityKeyUsed           = "KEY_USED"
	ActivityKeyPurchased      = "key_purchased"
	ActivityRaceCompleted     = "race_completed"
	ActivitySoloRaceCompleted = "solo_race_completed"
	ActivityCarShowdown       = "car_showdown"
	ActivityChallengeExpired  = "challenge_expired"
)

// ActivityLog is a feed entry describing something a user did or received
type ActivityLog struct {
	ID        int64                  `json:"id"`
	Type      string                 `json:"type"`
	UserID    string                 `json:"user_id"`
	TargetID  string                 `json:"target_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// ActivityFromEntry builds the feed row for a ledger entry
func ActivityFromEntry(e LedgerEntry, track TrackType) ActivityLog {
	return ActivityLog{
		Type:     string(e.Kind),
		UserID:   e.AccountID,
		TargetID: e.RaceID.String(),
		Details: map[string]interface{}{
			"amount": e.Amount,
			"track":  string(track),
		},
	}
}
