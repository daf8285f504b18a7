package domain

import (
	"strings"
	"time"
)

// Rarity is the closed set of car rarities
type Rarity string

const (
	RarityCommon    Rarity = "COMMON"
	RarityUncommon  Rarity = "UNCOMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
	RarityMythic    Rarity = "MYTHIC"
)

// AllRarities lists rarities from most to least common
var AllRarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary, RarityMythic}

// KeyTier is the closed set of gacha key tiers
type KeyTier string

const (
	KeyStandard  KeyTier = "STANDARD"
	KeyPremium   KeyTier = "PREMIUM"
	KeyLegendary KeyTier = "LEGENDARY"
	KeyMythic    KeyTier = "MYTHIC"
)

// AllKeyTiers lists key tiers from cheapest to most expensive
var AllKeyTiers = []KeyTier{KeyStandard, KeyPremium, KeyLegendary, KeyMythic}

// ParseKeyTier validates a key tier name. Matching is case-insensitive.
func ParseKeyTier(s string) (KeyTier, error) {
	t := KeyTier(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case KeyStandard, KeyPremium, KeyLegendary, KeyMythic:
		return t, nil
	}
	return "", ErrUnknownKeyTier
}

// DropSource says why a key was awarded
type DropSource string

const (
	DropSourceRaceWin         DropSource = "RACE_WIN"
	DropSourceRaceConsolation DropSource = "RACE_CONSOLATION"
)

// KeyInventoryEntry is an account's stack of one key tier. Quantity is never negative.
type KeyInventoryEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Tier      KeyTier   `json:"key_type"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KeyDrop is a key awarded after a race
type KeyDrop struct {
	UserID string     `json:"user_id"`
	Tier   KeyTier    `json:"key_type"`
	Source DropSource `json:"source"`
	Track  TrackType  `json:"track"`
}
