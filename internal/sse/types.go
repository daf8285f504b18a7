package sse

import (
	"github.com/osse101/RaceBot_Go/internal/domain"
)

// RaceFinishedPayload is what overlays receive when a race settles
type RaceFinishedPayload struct {
	RaceID       string                  `json:"race_id"`
	Kind         domain.RaceKind         `json:"kind"`
	Track        domain.TrackType        `json:"track"`
	TrackName    string                  `json:"track_name"`
	ChallengerID string                  `json:"challenger_id"`
	OpponentID   string                  `json:"opponent_id,omitempty"`
	WinnerID     string                  `json:"winner_id,omitempty"`
	Bet          int64                   `json:"bet,omitempty"`
	Margin       domain.MarginDescriptor `json:"margin"`
}

// ChallengeExpiredPayload tells overlays an open challenge lapsed
type ChallengeExpiredPayload struct {
	ChallengeID  string           `json:"challenge_id"`
	ChallengerID string           `json:"challenger_id"`
	OpponentID   string           `json:"opponent_id"`
	Track        domain.TrackType `json:"track"`
	Bet          int64            `json:"bet"`
}

// KeyDroppedPayload announces a reward key
type KeyDroppedPayload struct {
	UserID  string            `json:"user_id"`
	KeyType domain.KeyTier    `json:"key_type"`
	Source  domain.DropSource `json:"source"`
	Track   domain.TrackType  `json:"track,omitempty"`
}

// participants lets the hub filter events by account
type participants interface {
	involves(userID string) bool
}

func (p RaceFinishedPayload) involves(userID string) bool {
	return p.ChallengerID == userID || p.OpponentID == userID
}

func (p ChallengeExpiredPayload) involves(userID string) bool {
	return p.ChallengerID == userID || p.OpponentID == userID
}

func (p KeyDroppedPayload) involves(userID string) bool {
	return p.UserID == userID
}
