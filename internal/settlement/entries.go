package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/osse101/RaceBot_Go/internal/domain"
)

// DefaultSettledCacheSize bounds the in-memory set of recently settled races
const DefaultSettledCacheSize = 4096

// BetEntries returns the stake debits for a race: both players in PvP, the
// player alone in solo. Showdowns carry no stake.
func BetEntries(race *domain.Race) ([]domain.LedgerEntry, error) {
	track := race.Track.DisplayName()
	switch race.Kind {
	case domain.RaceKindPvP:
		if race.ChallengerID == race.OpponentID {
			return nil, domain.ErrSelfChallenge
		}
		return []domain.LedgerEntry{
			{
				AccountID:   race.ChallengerID,
				Amount:      -race.Bet,
				Kind:        domain.LedgerRaceBet,
				RaceID:      race.ID,
				Description: fmt.Sprintf("Race bet on %s", track),
			},
			{
				AccountID:   race.OpponentID,
				Amount:      -race.Bet,
				Kind:        domain.LedgerRaceBet,
				RaceID:      race.ID,
				Description: fmt.Sprintf("Race bet on %s", track),
			},
		}, nil
	case domain.RaceKindSolo:
		return []domain.LedgerEntry{{
			AccountID:   race.ChallengerID,
			Amount:      -race.Bet,
			Kind:        domain.LedgerSoloRaceBet,
			RaceID:      race.ID,
			Description: fmt.Sprintf("Solo race bet on %s", track),
		}}, nil
	default:
		return nil, fmt.Errorf("%w: %s races carry no stake", domain.ErrInvalidInput, race.Kind)
	}
}

// PayoutEntries returns the credits owed for a resolved race. A solo refund
// that floors to zero produces no entry.
func PayoutEntries(race *domain.Race) ([]domain.LedgerEntry, error) {
	if race.Result == nil {
		return nil, fmt.Errorf("%w: race %s has no result", domain.ErrInvalidRaceTransition, race.ID)
	}
	track := race.Track.DisplayName()

	switch race.Kind {
	case domain.RaceKindPvP:
		return []domain.LedgerEntry{{
			AccountID:   race.WinnerID(),
			Amount:      race.Bet * PvPWinMultiplier,
			Kind:        domain.LedgerRaceWin,
			RaceID:      race.ID,
			Description: fmt.Sprintf("Race win on %s", track),
		}}, nil

	case domain.RaceKindSolo:
		if race.Result.ChallengerWon() {
			return []domain.LedgerEntry{{
				AccountID:   race.ChallengerID,
				Amount:      SoloWinPayout(race.Bet),
				Kind:        domain.LedgerSoloRaceWin,
				RaceID:      race.ID,
				Description: fmt.Sprintf("Solo race win on %s", track),
			}}, nil
		}
		refund := SoloRefund(race.Bet)
		if refund == 0 {
			return []domain.LedgerEntry{}, nil
		}
		return []domain.LedgerEntry{{
			AccountID:   race.ChallengerID,
			Amount:      refund,
			Kind:        domain.LedgerSoloRaceRefund,
			RaceID:      race.ID,
			Description: fmt.Sprintf("Solo race consolation on %s", track),
		}}, nil

	default:
		return nil, fmt.Errorf("%w: %s races carry no stake", domain.ErrInvalidInput, race.Kind)
	}
}

// SoloWinPayout is floor(SoloWinMultiplier * bet)
func SoloWinPayout(bet int64) int64 {
	return decimal.NewFromInt(bet).Mul(SoloWinMultiplier).Floor().IntPart()
}

// SoloRefund is floor(SoloRefundFraction * bet)
func SoloRefund(bet int64) int64 {
	return decimal.NewFromInt(bet).Mul(SoloRefundFraction).Floor().IntPart()
}
