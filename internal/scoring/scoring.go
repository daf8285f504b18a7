// Package scoring turns car stats into a track-specific performance score.
package scoring

import (
	"math"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/weighted"
)

// Finish time conversion for timed races
const (
	BaseTime         = 60.0
	TimeScoreDivisor = 10.0
)

// Weights is the per-stat contribution to a track score
type Weights struct {
	Speed        float64 `json:"speed"`
	Acceleration float64 `json:"acceleration"`
	Handling     float64 `json:"handling"`
	Boost        float64 `json:"boost"`
}

var trackWeights = map[domain.TrackType]Weights{
	domain.TrackStreet:  {Speed: 0.30, Acceleration: 0.30, Handling: 0.25, Boost: 0.15},
	domain.TrackCircuit: {Speed: 0.25, Acceleration: 0.15, Handling: 0.45, Boost: 0.15},
	domain.TrackDrag:    {Speed: 0.45, Acceleration: 0.40, Handling: 0.05, Boost: 0.10},
	domain.TrackOffroad: {Speed: 0.15, Acceleration: 0.20, Handling: 0.30, Boost: 0.35},
	domain.TrackDrift:   {Speed: 0.20, Acceleration: 0.15, Handling: 0.50, Boost: 0.15},
}

// WeightsFor returns the weights used for a track
func WeightsFor(track domain.TrackType) (Weights, error) {
	w, ok := trackWeights[track]
	if !ok {
		return Weights{}, &domain.UnknownTrackTypeError{Value: string(track)}
	}
	return w, nil
}

// Score is the weighted dot product of the clamped stats and the track weights
func Score(stats domain.CarStats, track domain.TrackType) (float64, error) {
	w, err := WeightsFor(track)
	if err != nil {
		return 0, err
	}
	return w.apply(stats.Clamped()), nil
}

func (w Weights) apply(s domain.CarStats) float64 {
	return float64(s.Speed)*w.Speed +
		float64(s.Acceleration)*w.Acceleration +
		float64(s.Handling)*w.Handling +
		float64(s.Boost)*w.Boost
}

// FinishTime converts a score to seconds; a higher score gives a lower time
func FinishTime(score float64) float64 {
	return BaseTime - score/TimeScoreDivisor
}

// Perturbation applies bounded randomness to a raw score
type Perturbation interface {
	Apply(score float64, rnd weighted.Rand) float64
}

// Multiplicative scales the score by a factor in [1-Variance/2, 1+Variance/2)
type Multiplicative struct {
	Variance float64
}

func (m Multiplicative) Apply(score float64, rnd weighted.Rand) float64 {
	return score * weighted.Uniform(rnd, 1-m.Variance/2, 1+m.Variance/2)
}

// Additive shifts the score by a value in [Min, Max)
type Additive struct {
	Min float64
	Max float64
}

func (a Additive) Apply(score float64, rnd weighted.Rand) float64 {
	return score + weighted.Uniform(rnd, a.Min, a.Max)
}

// None leaves scores untouched and consumes no randomness
type None struct{}

func (None) Apply(score float64, _ weighted.Rand) float64 {
	return score
}

// Default perturbations per race family
var (
	HeadToHead Perturbation = Multiplicative{Variance: 0.2}
	Showdown   Perturbation = Additive{Min: -5, Max: 20}
)

// Rating is the cosmetic 1-10 track suitability of a car. It never decides races.
type Rating struct {
	Track domain.TrackType `json:"track"`
	Score float64          `json:"score"`
	Value int              `json:"value"`
	Label string           `json:"label"`
}

var ratingLabels = [10]string{
	"Terrible",
	"Very Poor",
	"Poor",
	"Below Average",
	"Average",
	"Above Average",
	"Good",
	"Very Good",
	"Excellent",
	"Perfect",
}

// Rate buckets the unperturbed score into 1..10
func Rate(stats domain.CarStats, track domain.TrackType) (Rating, error) {
	score, err := Score(stats, track)
	if err != nil {
		return Rating{}, err
	}
	value := int(math.Floor(score / 100 * 10))
	value = min(max(value, 1), 10)
	return Rating{
		Track: track,
		Score: score,
		Value: value,
		Label: ratingLabels[value-1],
	}, nil
}
