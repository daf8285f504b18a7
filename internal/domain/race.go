package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TrackType is the closed set of race tracks
type TrackType string

const (
	TrackStreet  TrackType = "street"
	TrackCircuit TrackType = "circuit"
	TrackDrag    TrackType = "drag"
	TrackOffroad TrackType = "offroad"
	TrackDrift   TrackType = "drift"
)

// AllTrackTypes lists every track in display order
var AllTrackTypes = []TrackType{TrackStreet, TrackCircuit, TrackDrag, TrackOffroad, TrackDrift}

// ParseTrackType validates a track name. Matching is case-insensitive.
func ParseTrackType(s string) (TrackType, error) {
	t := TrackType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &UnknownTrackTypeError{Value: s}
	}
	return t, nil
}

// Valid reports whether t is one of the known tracks
func (t TrackType) Valid() bool {
	switch t {
	case TrackStreet, TrackCircuit, TrackDrag, TrackOffroad, TrackDrift:
		return true
	}
	return false
}

// DisplayName returns the title-cased track name used in ledger descriptions.
// A Caser is stateful, so each call builds its own.
func (t TrackType) DisplayName() string {
	return cases.Title(language.English).String(string(t))
}

// MaxStatValue caps generated stats
const MaxStatValue = 100

// CarStats is the four-stat profile of a car
type CarStats struct {
	Speed        int `json:"speed"`
	Acceleration int `json:"acceleration"`
	Handling     int `json:"handling"`
	Boost        int `json:"boost"`
}

// Clamped returns a copy with negative stats raised to zero
func (s CarStats) Clamped() CarStats {
	return CarStats{
		Speed:        max(s.Speed, 0),
		Acceleration: max(s.Acceleration, 0),
		Handling:     max(s.Handling, 0),
		Boost:        max(s.Boost, 0),
	}
}

// Side identifies a participant in a race. It is a label only.
type Side string

const (
	SideChallenger Side = "challenger"
	SideOpponent   Side = "opponent"
)

// Other returns the opposing side
func (s Side) Other() Side {
	if s == SideChallenger {
		return SideOpponent
	}
	return SideChallenger
}

// RaceKind distinguishes how a race is staked and paid out
type RaceKind string

const (
	RaceKindPvP      RaceKind = "pvp"
	RaceKindSolo     RaceKind = "solo"
	RaceKindShowdown RaceKind = "showdown"
)

// ResolutionMode selects how scores are compared
type ResolutionMode string

const (
	// ModeTimed converts scores to finish times; lower time wins
	ModeTimed ResolutionMode = "timed"
	// ModeScore compares perturbed scores directly; higher score wins
	ModeScore ResolutionMode = "score"
)

// RaceEventType is a cosmetic event category
type RaceEventType string

const (
	RaceEventOvertake RaceEventType = "overtake"
	RaceEventBoost    RaceEventType = "boost"
	RaceEventDrift    RaceEventType = "drift"
	RaceEventShortcut RaceEventType = "shortcut"
	RaceEventError    RaceEventType = "error"
)

// AllRaceEventTypes is the uniform pool events are drawn from
var AllRaceEventTypes = []RaceEventType{
	RaceEventOvertake,
	RaceEventBoost,
	RaceEventDrift,
	RaceEventShortcut,
	RaceEventError,
}

// RaceEvent annotates a result; it never affects the outcome
type RaceEvent struct {
	Timestamp   float64       `json:"timestamp"`
	Type        RaceEventType `json:"type"`
	Driver      Side          `json:"driver"`
	Description string        `json:"description"`
}

// MarginDescriptor is the qualitative size of a win
type MarginDescriptor string

const (
	MarginByAHair      MarginDescriptor = "by a hair"
	MarginSmall        MarginDescriptor = "by a small margin"
	MarginComfortably  MarginDescriptor = "comfortably"
	MarginByALandslide MarginDescriptor = "by a landslide"
)

// RaceResult is the immutable output of the resolution engine
type RaceResult struct {
	Track           TrackType        `json:"track"`
	Mode            ResolutionMode   `json:"mode"`
	Winner          Side             `json:"winner"`
	ChallengerScore float64          `json:"challenger_score"`
	OpponentScore   float64          `json:"opponent_score"`
	ChallengerTime  float64          `json:"challenger_time,omitempty"`
	OpponentTime    float64          `json:"opponent_time,omitempty"`
	TimeDifference  float64          `json:"time_difference,omitempty"`
	MarginPercent   float64          `json:"margin_percent"`
	Margin          MarginDescriptor `json:"margin"`
	Events          []RaceEvent      `json:"events"`
}

// ChallengerWon reports whether the challenger side took the race
func (r *RaceResult) ChallengerWon() bool {
	return r.Winner == SideChallenger
}

// RaceStatus is the lifecycle state of a stored race
type RaceStatus string

const (
	RaceStatusCreated  RaceStatus = "created"
	RaceStatusScored   RaceStatus = "scored"
	RaceStatusResolved RaceStatus = "resolved"
	RaceStatusSettled  RaceStatus = "settled"
)

var raceStatusOrder = map[RaceStatus]int{
	RaceStatusCreated:  0,
	RaceStatusScored:   1,
	RaceStatusResolved: 2,
	RaceStatusSettled:  3,
}

// Race is the persisted record of one race
type Race struct {
	ID            uuid.UUID   `json:"id"`
	Kind          RaceKind    `json:"kind"`
	Track         TrackType   `json:"track"`
	ChallengerID  string      `json:"challenger_id"`
	OpponentID    string      `json:"opponent_id,omitempty"`
	ChallengerCar CarStats    `json:"challenger_car"`
	OpponentCar   CarStats    `json:"opponent_car"`
	Bet           int64       `json:"bet"`
	Status        RaceStatus  `json:"status"`
	Result        *RaceResult `json:"result,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	SettledAt     *time.Time  `json:"settled_at,omitempty"`
}

// NewRace creates a race record in the Created state
func NewRace(kind RaceKind, track TrackType, challengerID, opponentID string, bet int64) *Race {
	return &Race{
		ID:           uuid.New(),
		Kind:         kind,
		Track:        track,
		ChallengerID: challengerID,
		OpponentID:   opponentID,
		Bet:          bet,
		Status:       RaceStatusCreated,
		CreatedAt:    time.Now(),
	}
}

// Advance moves the race exactly one step forward in its lifecycle
func (r *Race) Advance(next RaceStatus) error {
	cur, ok := raceStatusOrder[r.Status]
	to, okNext := raceStatusOrder[next]
	if !ok || !okNext || to != cur+1 {
		return ErrInvalidRaceTransition
	}
	r.Status = next
	return nil
}

// WinnerID returns the account that won, or "" for an AI winner
func (r *Race) WinnerID() string {
	if r.Result == nil {
		return ""
	}
	if r.Result.ChallengerWon() {
		return r.ChallengerID
	}
	return r.OpponentID
}
