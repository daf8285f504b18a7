package race

import (
	"math"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/weighted"
)

// AI opponent stat spread relative to the player's car
const (
	OpponentStatMinFactor = 0.8
	OpponentStatMaxFactor = 1.2
)

// GenerateOpponent builds an AI car near the player's stats. Each stat is scaled
// independently and capped at domain.MaxStatValue.
func GenerateOpponent(rnd weighted.Rand, player domain.CarStats) domain.CarStats {
	p := player.Clamped()
	return domain.CarStats{
		Speed:        scaleStat(rnd, p.Speed),
		Acceleration: scaleStat(rnd, p.Acceleration),
		Handling:     scaleStat(rnd, p.Handling),
		Boost:        scaleStat(rnd, p.Boost),
	}
}

func scaleStat(rnd weighted.Rand, stat int) int {
	factor := weighted.Uniform(rnd, OpponentStatMinFactor, OpponentStatMaxFactor)
	return min(int(math.Floor(float64(stat)*factor)), domain.MaxStatValue)
}
