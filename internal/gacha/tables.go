package gacha

import (
	"github.com/samber/lo"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/weighted"
)

// rarityInfo is the static per-rarity data
type rarityInfo struct {
	BaseChance      float64
	ValueMultiplier float64
}

var rarities = map[domain.Rarity]rarityInfo{
	domain.RarityCommon:    {BaseChance: 0.25, ValueMultiplier: 1},
	domain.RarityUncommon:  {BaseChance: 0.25, ValueMultiplier: 1.5},
	domain.RarityRare:      {BaseChance: 0.25, ValueMultiplier: 2},
	domain.RarityEpic:      {BaseChance: 0.15, ValueMultiplier: 3},
	domain.RarityLegendary: {BaseChance: 0.07, ValueMultiplier: 5},
	domain.RarityMythic:    {BaseChance: 0.03, ValueMultiplier: 10},
}

// keyInfo is the static per-key-tier data
type keyInfo struct {
	Price int64
	Boost map[domain.Rarity]float64
}

var keys = map[domain.KeyTier]keyInfo{
	domain.KeyStandard: {
		Price: 5000,
		Boost: map[domain.Rarity]float64{
			domain.RarityCommon:    2.0,
			domain.RarityUncommon:  1.5,
			domain.RarityRare:      1.0,
			domain.RarityEpic:      0.3,
			domain.RarityLegendary: 0.1,
			domain.RarityMythic:    0.05,
		},
	},
	domain.KeyPremium: {
		Price: 15000,
		Boost: map[domain.Rarity]float64{
			domain.RarityCommon:    3.5,
			domain.RarityUncommon:  2.0,
			domain.RarityRare:      1.5,
			domain.RarityEpic:      1.0,
			domain.RarityLegendary: 0.5,
			domain.RarityMythic:    0.1,
		},
	},
	domain.KeyLegendary: {
		Price: 35000,
		Boost: map[domain.Rarity]float64{
			domain.RarityCommon:    0.1,
			domain.RarityUncommon:  0.2,
			domain.RarityRare:      1.0,
			domain.RarityEpic:      3.0,
			domain.RarityLegendary: 2.5,
			domain.RarityMythic:    1.0,
		},
	},
	domain.KeyMythic: {
		Price: 75000,
		Boost: map[domain.Rarity]float64{
			domain.RarityCommon:    0,
			domain.RarityUncommon:  0,
			domain.RarityRare:      0.5,
			domain.RarityEpic:      1.0,
			domain.RarityLegendary: 3.0,
			domain.RarityMythic:    5.0,
		},
	},
}

var flatRarityTable = weighted.MustTable(lo.Map(domain.AllRarities, func(r domain.Rarity, _ int) weighted.Outcome[domain.Rarity] {
	return weighted.Outcome[domain.Rarity]{Label: r, Weight: rarities[r].BaseChance}
}))

// BaseChance returns the unboosted probability of a rarity
func BaseChance(r domain.Rarity) float64 {
	return rarities[r].BaseChance
}

// ValueMultiplier scales a car's value by rarity
func ValueMultiplier(r domain.Rarity) float64 {
	return rarities[r].ValueMultiplier
}

// KeyPrice returns the shop price of a key tier
func KeyPrice(tier domain.KeyTier) (int64, error) {
	info, ok := keys[tier]
	if !ok {
		return 0, domain.ErrUnknownKeyTier
	}
	return info.Price, nil
}

// BoostFactor returns the multiplier a key tier applies to a rarity's base chance
func BoostFactor(tier domain.KeyTier, r domain.Rarity) (float64, error) {
	info, ok := keys[tier]
	if !ok {
		return 0, domain.ErrUnknownKeyTier
	}
	return info.Boost[r], nil
}

// BoostedChances multiplies every base chance by the tier's boost factor and
// renormalizes so the returned weights sum to 1. Order follows domain.AllRarities.
func BoostedChances(tier domain.KeyTier) ([]weighted.Outcome[domain.Rarity], error) {
	info, ok := keys[tier]
	if !ok {
		return nil, domain.ErrUnknownKeyTier
	}

	adjusted := lo.Map(domain.AllRarities, func(r domain.Rarity, _ int) weighted.Outcome[domain.Rarity] {
		return weighted.Outcome[domain.Rarity]{Label: r, Weight: rarities[r].BaseChance * info.Boost[r]}
	})
	sum := lo.SumBy(adjusted, func(o weighted.Outcome[domain.Rarity]) float64 { return o.Weight })
	if sum <= 0 {
		return nil, &domain.InvalidWeightsError{Reason: "key boosts exclude every rarity"}
	}
	for i := range adjusted {
		adjusted[i].Weight /= sum
	}
	return adjusted, nil
}

// RollRarity draws a rarity from the flat base distribution
func RollRarity(rnd weighted.Rand) domain.Rarity {
	return flatRarityTable.Pick(rnd)
}

// RollRarityWithKey draws a rarity from the key-adjusted distribution
func RollRarityWithKey(rnd weighted.Rand, tier domain.KeyTier) (domain.Rarity, error) {
	chances, err := BoostedChances(tier)
	if err != nil {
		return "", err
	}
	return weighted.Pick(rnd, chances)
}
